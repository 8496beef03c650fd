// In file: internal/action/handlers.go
package action

import (
	"context"
	"fmt"
	"hash/fnv"

	"go.uber.org/zap"

	"github.com/chengwenxing-cmd/VoiceService/internal/intent"
	"github.com/chengwenxing-cmd/VoiceService/internal/llm"
)

const (
	// ClarifyReply is used for unknown intents when the model has nothing to say.
	ClarifyReply = "我可能没有完全理解您的意思，能否请您换种方式表达？"
	ChatReply    = "很高兴与您聊天。"

	simulatedRecordingSeconds = 120
)

type unknownHandler struct {
	classifier llm.IntentClassifier
	logger     *zap.Logger
}

// Handle asks the model for a conversational reply to an utterance none of
// the strategies could place.
func (h *unknownHandler) Handle(ctx context.Context, req Request) (Result, error) {
	message := ClarifyReply
	if h.classifier != nil {
		cls := h.classifier.ClassifyIntent(ctx, req.Intent.Text(), map[string]any{
			"session_id":  req.SessionID,
			"intent_type": string(intent.Unknown),
		}, nil)
		if cls.Success && cls.Data.Reply != "" {
			message = cls.Data.Reply
		} else {
			h.logger.Warn("model gave no usable reply for unknown intent", zap.String("message", cls.Message))
		}
	}
	return Result{
		Status:  "unknown_intent",
		Message: message,
		Code:    codeOK,
		Data:    command("chat_reply", nil),
	}, nil
}

func handleChat(_ context.Context, _ Request) (Result, error) {
	return Result{
		Status:  "chat",
		Message: ChatReply,
		Code:    codeOK,
		Data:    command("chat_reply", nil),
	}, nil
}

// recordingID derives a stable id from the utterance.
func recordingID(text string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	return fmt.Sprintf("rec_%d", h.Sum32()%10000)
}

func handleStartRecording(_ context.Context, req Request) (Result, error) {
	return Result{
		Status:      "started",
		RecordingID: recordingID(req.Intent.Text()),
		Message:     "录音已开始",
		Code:        codeOK,
		Data:        command("start_recording", nil),
	}, nil
}

func handleStopRecording(_ context.Context, req Request) (Result, error) {
	return Result{
		Status:      "stopped",
		RecordingID: recordingID(req.Intent.Text()),
		Duration:    simulatedRecordingSeconds,
		Message:     "录音已停止",
		Code:        codeOK,
		Data:        command("stop_recording", nil),
	}, nil
}

func handlePlayMusic(_ context.Context, _ Request) (Result, error) {
	return Result{
		Status:    "playing",
		MediaType: "music",
		Message:   "正在播放音乐",
		Code:      codeOK,
		Data:      command("play_media", map[string]any{"type": "music"}),
	}, nil
}

func handlePauseMusic(_ context.Context, _ Request) (Result, error) {
	return Result{
		Status:    "paused",
		MediaType: "music",
		Message:   "音乐已暂停",
		Code:      codeOK,
		Data:      command("pause_media", map[string]any{"type": "music"}),
	}, nil
}

// handleDevice serves both CONTROL_DEVICE_ON and CONTROL_DEVICE_OFF.
func handleDevice(_ context.Context, req Request) (Result, error) {
	status := "off"
	if req.Intent.Type() == intent.ControlDeviceOn {
		status = "on"
	}
	target := req.Action.Target
	if target == "" {
		target = "设备"
	}
	return Result{
		Status:  status,
		Device:  target,
		Message: target + "已" + req.Action.Operation,
		Code:    codeOK,
		Data:    command("device_"+status, map[string]any{"device": target}),
	}, nil
}

func handleQueryTime(_ context.Context, _ Request) (Result, error) {
	data := command("query_time", nil)
	data.Result = "模拟查询结果"
	return Result{
		Status:    StatusSuccess,
		QueryType: "time",
		Message:   "查询成功",
		Code:      codeOK,
		Data:      data,
	}, nil
}

func handleGeneric(_ context.Context, req Request) (Result, error) {
	return Result{
		Status:     StatusSuccess,
		ActionType: string(req.Action.Type),
		Target:     req.Action.Target,
		Operation:  req.Action.Operation,
		Message:    fmt.Sprintf("已执行%s操作", req.Action.Type),
		Code:       codeOK,
		Data:       command("generic_action", nil),
	}, nil
}
