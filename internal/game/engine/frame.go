package engine

import (
	"time"

	"BlackjackAdvisor/internal/game/shuffle"
	"BlackjackAdvisor/internal/game/table"
	"BlackjackAdvisor/internal/game/tracker"
)

// BoundingBox 识别框，核心逻辑不使用，原样透传给自定义的归属判断
type BoundingBox struct {
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

// Detection 感知模块的一条识别结果，CardID 未经校验
type Detection struct {
	CardID         int         `json:"cardId"`
	Confidence     float64     `json:"confidence"`
	Box            BoundingBox `json:"boundingBox"`
	TimestampNanos int64       `json:"timestampNanos"`
}

// Frame 一帧的全部识别结果；At 为零时使用引擎时钟
type Frame struct {
	Detections []Detection `json:"detections"`
	At         time.Time   `json:"at"`
}

// FrameResult 一帧处理后的结果
type FrameResult struct {
	Frame     uint64            `json:"frame"`
	Confirmed []table.Card      `json:"confirmed"`
	Rejected  int               `json:"rejected"`
	Phase     tracker.Phase     `json:"phase"`
	Indicator shuffle.Indicator `json:"indicator"`
	Reset     bool              `json:"reset"`
	Decision  *Decision         `json:"decision,omitempty"`
}
