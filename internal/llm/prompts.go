// In file: internal/llm/prompts.go
package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// intentSystemPrompt describes the intent catalogue and the JSON contract the
// model must answer with.
const intentSystemPrompt = `你是一个专业的语音助手意图识别系统。分析用户输入，识别意图类型和实体，并只返回一个JSON对象。

可选的意图类型：
- CONTROL_DEVICE_ON: 打开设备（如"打开空调"），实体 target 为设备名
- CONTROL_DEVICE_OFF: 关闭设备（如"关掉电视"），实体 target 为设备名
- QUERY_WEATHER: 查询天气，实体 city 为城市，date 为日期（今天、明天、后天、周一等）
- QUERY_TIME: 查询时间或日期
- PLAY_MUSIC: 播放音乐，实体 song / artist 可选
- PAUSE_MUSIC: 暂停音乐
- STARTRECORDING: 开始录音
- STOPRECORDING: 停止录音
- SET_REMINDER: 设置提醒，实体 time 和 content
- CHAT: 闲聊、问候或与上述功能无关的对话
- UNKNOWN: 无法判断

返回格式：
{
  "success": true,
  "message": "识别成功",
  "data": {
    "intent": "意图类型",
    "confidence": 0.0到1.0之间的数字,
    "entities": {},
    "reply": "给用户的简短中文回复"
  }
}

不要输出JSON以外的任何内容。`

// fallbackUserPrompt is the instruction wrapped around every utterance.
const fallbackUserPrompt = "请分析以下文本，识别其中的意图和实体，并生成相应的动作指令：\n\n%s"

// buildUserPrompt embeds the utterance and, when present, the request context
// rendered as indented JSON.
func buildUserPrompt(text string, info map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, fallbackUserPrompt, text)
	if len(info) > 0 {
		if ctxJSON, err := json.MarshalIndent(info, "", "  "); err == nil {
			b.WriteString("\n\n上下文信息：\n")
			b.Write(ctxJSON)
		}
	}
	return b.String()
}
