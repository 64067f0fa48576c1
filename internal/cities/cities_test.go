package cities

import "testing"

func TestFind(t *testing.T) {
	c, ok := Find("大阪市")
	if !ok {
		t.Fatal("expected to find 大阪市")
	}
	if c.Prefecture != "大阪府" {
		t.Errorf("expected 大阪府, got %s", c.Prefecture)
	}

	if _, ok := Find("どこにもない市"); ok {
		t.Error("expected miss for unknown city")
	}
}

func TestDefaultIsTokyo(t *testing.T) {
	if Default.Name != "東京都" {
		t.Errorf("expected default 東京都, got %s", Default.Name)
	}
	if Default.Latitude != 35.6762 || Default.Longitude != 139.6503 {
		t.Errorf("unexpected default coordinates: %v, %v", Default.Latitude, Default.Longitude)
	}
}

func TestByPrefecture(t *testing.T) {
	got := ByPrefecture("北海道")
	if len(got) != 3 {
		t.Errorf("expected 3 cities in 北海道, got %d", len(got))
	}
	if len(ByPrefecture("未知県")) != 0 {
		t.Error("expected no cities for unknown prefecture")
	}
}

func TestPrefecturesSortedUnique(t *testing.T) {
	prefs := Prefectures()
	if len(prefs) != 47 {
		t.Errorf("expected 47 prefectures, got %d", len(prefs))
	}
	for i := 1; i < len(prefs); i++ {
		if prefs[i-1] >= prefs[i] {
			t.Fatalf("prefectures not sorted/unique at %d: %s >= %s", i, prefs[i-1], prefs[i])
		}
	}
}

func TestByRegion(t *testing.T) {
	kanto := ByRegion("関東")
	if len(kanto) != 7 {
		t.Errorf("expected 7 関東 cities, got %d", len(kanto))
	}
	if len(ByRegion("中つ国")) != 0 {
		t.Error("expected no cities for unknown region")
	}
}

func TestCoordinatesInJapanRange(t *testing.T) {
	for _, c := range All {
		if c.Latitude < 24 || c.Latitude > 46 {
			t.Errorf("%s: latitude %v out of range", c.Name, c.Latitude)
		}
		if c.Longitude < 122 || c.Longitude > 146 {
			t.Errorf("%s: longitude %v out of range", c.Name, c.Longitude)
		}
	}
}
