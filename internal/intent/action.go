// In file: internal/intent/action.go
package intent

// ActionType is the kind of executable directive derived from an intent.
type ActionType string

const (
	ActionDeviceControl      ActionType = "device_control"
	ActionInformationQuery   ActionType = "information_query"
	ActionMediaOperation     ActionType = "media_operation"
	ActionRecordingOperation ActionType = "recording_operation"
	ActionReminderOperation  ActionType = "reminder_operation"
	ActionChatResponse       ActionType = "chat_response"
	ActionUnknown            ActionType = "unknown"
)

// Entity keys consumed by the action mapper.
const (
	EntityTarget    = "target"
	EntityOperation = "operation"
	EntityCity      = "city"
	EntityDate      = "date"
)

// Action is the directive produced by MapAction.
type Action struct {
	Type       ActionType     `json:"type"`
	Target     string         `json:"target"`
	Operation  string         `json:"operation"`
	Parameters map[string]any `json:"parameters"`
}

// mapping is one row of the static intent -> action table.
type mapping struct {
	action    ActionType
	target    string
	operation string
}

// actionTable is read-only after package init.
var actionTable = map[Type]mapping{
	ControlDeviceOn:  {action: ActionDeviceControl, operation: "开启"},
	ControlDeviceOff: {action: ActionDeviceControl, operation: "关闭"},

	QueryWeather: {action: ActionInformationQuery, target: "天气"},
	QueryTime:    {action: ActionInformationQuery, target: "时间"},

	PlayMusic:  {action: ActionMediaOperation, operation: "播放", target: "音乐"},
	PauseMusic: {action: ActionMediaOperation, operation: "暂停", target: "音乐"},

	StartRecording: {action: ActionRecordingOperation, operation: "开始", target: "录音"},
	StopRecording:  {action: ActionRecordingOperation, operation: "停止", target: "录音"},

	SetReminder: {action: ActionReminderOperation, operation: "设置"},

	ControlDevice:    {action: ActionDeviceControl},
	QueryInfo:        {action: ActionInformationQuery},
	MediaControl:     {action: ActionMediaOperation},
	RecordingControl: {action: ActionRecordingOperation},
	ReminderSet:      {action: ActionReminderOperation},
	Chat:             {action: ActionChatResponse},
	Unknown:          {action: ActionUnknown},
}

// MapAction derives the Action for an intent. Table defaults for target and
// operation take precedence; entity values fill in what the table leaves
// empty. Every other entity becomes a parameter.
func MapAction(in *Intent) Action {
	row, ok := actionTable[in.Type()]
	if !ok {
		row = mapping{action: ActionUnknown}
	}

	target := row.target
	if target == "" {
		target = in.Entity(EntityTarget)
	}
	operation := row.operation
	if operation == "" {
		operation = in.Entity(EntityOperation)
	}

	params := in.Entities()
	delete(params, EntityTarget)
	delete(params, EntityOperation)

	return Action{
		Type:       row.action,
		Target:     target,
		Operation:  operation,
		Parameters: params,
	}
}
