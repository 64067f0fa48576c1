package weather

// WMO weather interpretation codes, as delivered by the forecast provider.

var conditions = map[int]string{
	0:  "快晴",
	1:  "晴れ",
	2:  "一部曇り",
	3:  "曇り",
	45: "霧",
	48: "霧氷",
	51: "小雨",
	53: "雨",
	55: "大雨",
	56: "凍雨（軽）",
	57: "凍雨（強）",
	61: "小雨",
	63: "雨",
	65: "大雨",
	66: "凍雨（軽）",
	67: "凍雨（強）",
	71: "小雪",
	73: "雪",
	75: "大雪",
	77: "雪粒",
	80: "にわか雨（軽）",
	81: "にわか雨",
	82: "にわか雨（強）",
	85: "にわか雪（軽）",
	86: "にわか雪（強）",
	95: "雷雨",
	96: "雷雨（雹軽）",
	99: "雷雨（雹強）",
}

var icons = map[int]string{
	2:  "⛅",
	3:  "☁️",
	45: "🌫️",
	48: "🌫️",
	51: "🌦️",
	53: "🌦️",
	55: "🌦️",
	56: "🌨️",
	57: "🌨️",
	61: "🌧️",
	63: "🌧️",
	65: "🌧️",
	66: "🌨️",
	67: "🌨️",
	71: "❄️",
	73: "❄️",
	75: "❄️",
	77: "🌨️",
	80: "🌦️",
	81: "🌦️",
	82: "🌦️",
	85: "🌨️",
	86: "🌨️",
	95: "⛈️",
	96: "⛈️",
	99: "⛈️",
}

func condition(code int) string {
	if c, ok := conditions[code]; ok {
		return c
	}
	return "不明"
}

func icon(code int, isDay bool) string {
	switch code {
	case 0:
		if isDay {
			return "☀️"
		}
		return "🌙"
	case 1:
		if isDay {
			return "🌤️"
		}
		return "🌙"
	}
	if i, ok := icons[code]; ok {
		return i
	}
	return "❓"
}
