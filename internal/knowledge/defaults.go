package knowledge

import "github.com/gatzby-git/shuowenjiezi/internal/model"

var defaultRecommendations = map[model.Level][]model.Recommendation{
	1: {
		{Character: "人", Type: "独体象形", Reason: "基础汉字"},
		{Character: "口", Type: "独体象形", Reason: "基础汉字"},
		{Character: "日", Type: "独体象形", Reason: "基础汉字"},
		{Character: "月", Type: "独体象形", Reason: "基础汉字"},
		{Character: "水", Type: "独体象形", Reason: "基础汉字"},
	},
	2: {
		{Character: "林", Type: "基础会意", Reason: "由两个'木'组成"},
		{Character: "从", Type: "基础会意", Reason: "由两个'人'组成"},
		{Character: "明", Type: "基础会意", Reason: "由'日'和'月'组成"},
		{Character: "好", Type: "基础会意", Reason: "由'女'和'子'组成"},
		{Character: "休", Type: "基础会意", Reason: "由'人'和'木'组成"},
	},
	3: {
		{Character: "森", Type: "基础会意", Reason: "由三个'木'组成"},
		{Character: "晶", Type: "基础会意", Reason: "由三个'日'组成"},
		{Character: "花", Type: "形声字", Reason: "艹部与化声"},
		{Character: "草", Type: "形声字", Reason: "艹部与早声"},
		{Character: "虫", Type: "独体象形", Reason: "基础部首"},
	},
	4: {
		{Character: "楚", Type: "形声字", Reason: "木部与疋声"},
		{Character: "清", Type: "形声字", Reason: "氵部与青声"},
		{Character: "湖", Type: "形声字", Reason: "氵部与胡声"},
		{Character: "晴", Type: "形声字", Reason: "日部与青声"},
		{Character: "暖", Type: "形声字", Reason: "日部与爰声"},
	},
	5: {
		{Character: "磊", Type: "基础会意", Reason: "由三个'石'组成"},
		{Character: "燃", Type: "形声字", Reason: "火部与然声"},
		{Character: "瀑", Type: "形声字", Reason: "氵部与暴声"},
		{Character: "骤", Type: "形声字", Reason: "马部与聚声"},
		{Character: "葵", Type: "形声字", Reason: "艹部与癸声"},
	},
	6: {
		{Character: "鑫", Type: "基础会意", Reason: "由三个'金'组成"},
		{Character: "澈", Type: "复合形声", Reason: "氵部与徹省声"},
		{Character: "馨", Type: "复合形声", Reason: "香部与殸声"},
		{Character: "鉴", Type: "形声字", Reason: "金部与监声"},
		{Character: "韵", Type: "形声字", Reason: "音部与匀声"},
	},
}

// DefaultRecommendations returns the built-in list for a grade. Unknown
// grades get the first-grade list.
func DefaultRecommendations(level model.Level) []model.Recommendation {
	list, ok := defaultRecommendations[level]
	if !ok {
		list = defaultRecommendations[model.MinLevel]
	}
	out := make([]model.Recommendation, len(list))
	copy(out, list)
	return out
}
