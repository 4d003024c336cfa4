package config

import (
	"sort"
	"strconv"
)

// Timeframes 时间窗口 -> 天数
var Timeframes = map[string]int{
	"1d":  1,
	"7d":  7,
	"30d": 30,
	"1y":  365,
}

// TimeframeDays 返回时间窗口对应的天数, 未知key返回false
func TimeframeDays(key string) (int, bool) {
	days, ok := Timeframes[key]
	return days, ok
}

// TimeframeKey 天数 -> 存储用的时间窗口key
func TimeframeKey(days int) string {
	if days >= 365 {
		return "1y"
	}
	return strconv.Itoa(days) + "d"
}

// TimeframeKeys 按天数升序
func TimeframeKeys() []string {
	keys := make([]string, 0, len(Timeframes))
	for k := range Timeframes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return Timeframes[keys[i]] < Timeframes[keys[j]] })
	return keys
}
