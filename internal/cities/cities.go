// Package cities is the directory of Japanese cities selectable as the
// dashboard location, with coordinates for the forecast provider.
package cities

import "sort"

type City struct {
	Name       string
	Prefecture string
	Latitude   float64
	Longitude  float64
}

var All = []City{
	// 北海道
	{"札幌市", "北海道", 43.0642, 141.3469},
	{"函館市", "北海道", 41.7687, 140.7288},
	{"旭川市", "北海道", 43.7711, 142.3649},
	// 東北
	{"青森市", "青森県", 40.8244, 140.7400},
	{"盛岡市", "岩手県", 39.7036, 141.1527},
	{"仙台市", "宮城県", 38.2682, 140.8694},
	{"秋田市", "秋田県", 39.7186, 140.1024},
	{"山形市", "山形県", 38.2404, 140.3633},
	{"福島市", "福島県", 37.7608, 140.4747},
	// 関東
	{"水戸市", "茨城県", 36.3418, 140.4468},
	{"宇都宮市", "栃木県", 36.5658, 139.8836},
	{"前橋市", "群馬県", 36.3911, 139.0608},
	{"さいたま市", "埼玉県", 35.8617, 139.6455},
	{"千葉市", "千葉県", 35.6074, 140.1065},
	{"東京都", "東京都", 35.6762, 139.6503},
	{"横浜市", "神奈川県", 35.4478, 139.6425},
	// 中部
	{"新潟市", "新潟県", 37.9161, 139.0364},
	{"富山市", "富山県", 36.6959, 137.2139},
	{"金沢市", "石川県", 36.5944, 136.6256},
	{"福井市", "福井県", 36.0652, 136.2217},
	{"山梨市", "山梨県", 35.6914, 138.6811},
	{"長野市", "長野県", 36.6513, 138.1810},
	{"岐阜市", "岐阜県", 35.3912, 136.7223},
	{"静岡市", "静岡県", 34.9756, 138.3828},
	{"名古屋市", "愛知県", 35.1815, 136.9066},
	// 近畿
	{"津市", "三重県", 34.7303, 136.5086},
	{"大津市", "滋賀県", 35.0045, 135.8686},
	{"京都市", "京都府", 35.0116, 135.7681},
	{"大阪市", "大阪府", 34.6937, 135.5023},
	{"神戸市", "兵庫県", 34.6901, 135.1956},
	{"奈良市", "奈良県", 34.6851, 135.8048},
	{"和歌山市", "和歌山県", 34.2261, 135.1675},
	// 中国
	{"鳥取市", "鳥取県", 35.5014, 134.2378},
	{"松江市", "島根県", 35.4723, 133.0505},
	{"岡山市", "岡山県", 34.6617, 133.9341},
	{"広島市", "広島県", 34.3853, 132.4553},
	{"山口市", "山口県", 34.1858, 131.4706},
	// 四国
	{"徳島市", "徳島県", 34.0658, 134.5594},
	{"高松市", "香川県", 34.3401, 134.0434},
	{"松山市", "愛媛県", 33.8416, 132.7657},
	{"高知市", "高知県", 33.5597, 133.5311},
	// 九州・沖縄
	{"福岡市", "福岡県", 33.5904, 130.4017},
	{"佐賀市", "佐賀県", 33.2494, 130.2989},
	{"長崎市", "長崎県", 32.7503, 129.8779},
	{"熊本市", "熊本県", 32.7898, 130.7417},
	{"大分市", "大分県", 33.2382, 131.6126},
	{"宮崎市", "宮崎県", 31.9077, 131.4202},
	{"鹿児島市", "鹿児島県", 31.5966, 130.5571},
	{"那覇市", "沖縄県", 26.2124, 127.6792},
}

// Default is Tokyo.
var Default = mustFind("東京都")

func mustFind(name string) City {
	c, ok := Find(name)
	if !ok {
		panic("cities: missing " + name)
	}
	return c
}

func Find(name string) (City, bool) {
	for _, c := range All {
		if c.Name == name {
			return c, true
		}
	}
	return City{}, false
}

func ByPrefecture(prefecture string) []City {
	var out []City
	for _, c := range All {
		if c.Prefecture == prefecture {
			out = append(out, c)
		}
	}
	return out
}

func Prefectures() []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range All {
		if !seen[c.Prefecture] {
			seen[c.Prefecture] = true
			out = append(out, c.Prefecture)
		}
	}
	sort.Strings(out)
	return out
}

// Regions groups prefectures for the location picker.
var Regions = map[string][]string{
	"北海道":   {"北海道"},
	"東北":    {"青森県", "岩手県", "宮城県", "秋田県", "山形県", "福島県"},
	"関東":    {"茨城県", "栃木県", "群馬県", "埼玉県", "千葉県", "東京都", "神奈川県"},
	"中部":    {"新潟県", "富山県", "石川県", "福井県", "山梨県", "長野県", "岐阜県", "静岡県", "愛知県"},
	"近畿":    {"三重県", "滋賀県", "京都府", "大阪府", "兵庫県", "奈良県", "和歌山県"},
	"中国":    {"鳥取県", "島根県", "岡山県", "広島県", "山口県"},
	"四国":    {"徳島県", "香川県", "愛媛県", "高知県"},
	"九州・沖縄": {"福岡県", "佐賀県", "長崎県", "熊本県", "大分県", "宮崎県", "鹿児島県", "沖縄県"},
}

func ByRegion(region string) []City {
	prefs, ok := Regions[region]
	if !ok {
		return nil
	}
	in := map[string]bool{}
	for _, p := range prefs {
		in[p] = true
	}
	var out []City
	for _, c := range All {
		if in[c.Prefecture] {
			out = append(out, c)
		}
	}
	return out
}
