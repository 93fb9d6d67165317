package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	// Stage names the render stage that raised the error, when known.
	Stage string `json:"stage,omitempty"`
}

// HealthResponse reports server liveness and queue depth.
type HealthResponse struct {
	Status string `json:"status"`
	Queued int    `json:"queued"`
	Busy   bool   `json:"busy"`
}

// Size is a width/height pair.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Crop is a crop rectangle in source pixels.
type Crop struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Element is one stacked element of a plan.
type Element struct {
	Kind           string  `json:"kind"`
	Name           string  `json:"name"`
	Weight         int     `json:"weight"`
	EffectiveRatio float64 `json:"effectiveRatio"`
	Crop           *Crop   `json:"crop,omitempty"`
	Size           Size    `json:"size"`
}

// Downgrade describes a lowered resolution.
type Downgrade struct {
	Clip string `json:"clip"`
	From Size   `json:"from"`
	To   Size   `json:"to"`
}

// Plan is the transport form of a layout plan.
type Plan struct {
	Orientation     string     `json:"orientation"`
	TargetRatio     float64    `json:"targetRatio"`
	TotalWeight     int        `json:"totalWeight"`
	Resolution      Size       `json:"resolution"`
	Canvas          Size       `json:"canvas"`
	DurationSeconds float64    `json:"durationSeconds"`
	Elements        []Element  `json:"elements"`
	Downgrade       *Downgrade `json:"downgrade,omitempty"`
	Warnings        []string   `json:"warnings,omitempty"`
}

// Render is the transport form of a history row.
type Render struct {
	ID              int64    `json:"id"`
	SessionID       string   `json:"sessionId"`
	Project         string   `json:"project,omitempty"`
	Output          string   `json:"output"`
	Status          string   `json:"status"`
	Stage           string   `json:"stage,omitempty"`
	Resolution      string   `json:"resolution,omitempty"`
	DurationSeconds float64  `json:"durationSeconds,omitempty"`
	Sources         int      `json:"sources"`
	Pages           int      `json:"pages"`
	Warnings        []string `json:"warnings,omitempty"`
	ErrorMessage    string   `json:"errorMessage,omitempty"`
	OutputBytes     int64    `json:"outputBytes,omitempty"`
	ArchivePath     string   `json:"archivePath,omitempty"`
	StartedAt       string   `json:"startedAt,omitempty"`
	FinishedAt      string   `json:"finishedAt,omitempty"`
	ElapsedSeconds  float64  `json:"elapsedSeconds,omitempty"`
}

// RenderList is the body of GET /api/renders.
type RenderList struct {
	Renders []Render       `json:"renders"`
	Stats   map[string]int `json:"stats"`
}

// RenderAccepted is the body of a queued render.
type RenderAccepted struct {
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
	Location  string `json:"location"`
}
