package dto

import "time"

type DeviceInfo struct {
	Name          string
	Version       string
	Enabled       bool
	Binary        string
	Capabilities  []string
	MinConfidence float64
}

type DoctorResult struct {
	Name            string
	Model           string
	ChecksumValid   bool
	BinaryReachable bool
	LifecycleOK     bool
	Error           string
}

type RecognizeInput struct {
	Device     string
	Hint       string
	CapturedAt time.Time
}

type RecognizeOutput struct {
	Device      string
	StudentID   string
	DisplayName string
	Confidence  float64
}
