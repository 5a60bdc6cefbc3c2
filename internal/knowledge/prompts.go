package knowledge

import (
	"fmt"
	"strings"
)

func characterPrompt(c string) string {
	return fmt.Sprintf(`请提供汉字"%[1]s"的以下结构化信息，直接返回JSON格式:
{
  "character": "%[1]s",
  "type": "汉字类型(独体象形/基础会意/复合形声)",
  "level": 适合学习的年级数字(1-6),
  "explanation": "详细解释，包括构字理据、本义、演变等",
  "components": ["组成部件列表"],
  "evolution": ["甲骨文描述", "金文描述", "小篆描述", "楷书描述"],
  "relatedCharacters": ["相关汉字1", "相关汉字2"],
  "commonWords": ["常见词1", "常见词2"]
}
只返回JSON，不要有其他文字。`, c)
}

func analysisPrompt(c string) string {
	return fmt.Sprintf(`请详细分析汉字"%s"的结构组成、字源演变和文化含义，包括：
1. 该字的部件拆解和构字理据
2. 从甲骨文、金文到小篆、楷书的演变过程
3. 字的本义和引申义
4. 与该字相关的文化背景
请以适合小学生理解的方式组织回答，语言生动有趣，内容既要专业又要通俗易懂。`, c)
}

func evolutionPrompt(c string) string {
	return fmt.Sprintf(`请详细描述汉字"%s"从甲骨文到现代汉字的演变过程。
包括各个历史时期的字形变化及其理据。描述要生动形象，适合小学生理解。
请按时期分段，每个阶段单独一段并以序号开头。
如果您知道具体的字形演变，请简要描述每个阶段的视觉特征，如果不确定，请基于汉字构形原理进行合理推测。`, c)
}

const recommendationShape = `请按照"独体象形→基础会意→复合形声"的学习顺序推荐。
直接返回JSON格式:
{
  "characters": [
    {"character": "字1", "type": "类型", "reason": "推荐理由"},
    {"character": "字2", "type": "类型", "reason": "推荐理由"}
  ]
}
只返回JSON，不要有其他文字。`

func levelPrompt(level, count int) string {
	return fmt.Sprintf("请推荐%d个适合小学%d年级学生学习的汉字。\n%s", count, level, recommendationShape)
}

func interestPrompt(interest string, level, count int) string {
	return fmt.Sprintf("请推荐%d个与\"%s\"相关的汉字，适合小学%d年级学生学习。\n%s", count, interest, level, recommendationShape)
}

func relatedPrompt(c string, level int, interests []string) string {
	var focus string
	if len(interests) > 0 {
		focus = "，特别是与" + strings.Join(interests, "、") + "相关的汉字"
	}
	return fmt.Sprintf(`请根据汉字"%[1]s"，推荐5-8个与之相关的汉字%[2]s。
相关汉字应符合以下条件：
1. 与"%[1]s"形、音、义有关联
2. 难度适合小学%[3]d年级的学生
3. 遵循"独体象形→基础会意→复合形声"的学习顺序

请按照以下JSON格式返回，不要包含其他文本：
{
  "related_characters": [
    {"character": "字", "relation": "关系说明", "type": "类型"}
  ]
}`, c, focus, level)
}
