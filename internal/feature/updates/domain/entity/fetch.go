package entity

import "time"

// Attempt reasons recorded per connector.
const (
	ReasonOK                = "ok"
	ReasonNoResults         = "no_results"
	ReasonUnconfigured      = "unconfigured"
	ReasonUnauthorized      = "unauthorized"
	ReasonRateLimited       = "rate_limited"
	ReasonUnavailable       = "unavailable"
	ReasonMalformedResponse = "malformed_response"
	ReasonCanceled          = "canceled"
)

// ConnectorAttempt は1つのコネクタに対する試行結果です。
type ConnectorAttempt struct {
	Connector string `json:"connector"`
	Reason    string `json:"reason"`
	Retried   bool   `json:"retried,omitempty"`
	Items     int    `json:"items"`
	Error     string `json:"error,omitempty"`
}

// FetchBatch はフォールバックチェーン1回分の結果です。永続化されません。
type FetchBatch struct {
	Items     []RawItem
	Connector string
	Attempts  []ConnectorAttempt
	Exhausted bool
}

// Diagnostics は組織ごとのフェッチ診断情報です。
type Diagnostics struct {
	OrganizationID   uint               `json:"organization_id"`
	OrganizationName string             `json:"organization_name"`
	Connector        string             `json:"connector,omitempty"`
	Attempts         []ConnectorAttempt `json:"attempts"`
	Exhausted        bool               `json:"exhausted"`
	Fetched          int                `json:"fetched"`
	Duplicates       int                `json:"duplicates"`
	Inserted         int                `json:"inserted"`
	Error            string             `json:"error,omitempty"`
}

// FetchResult は FetchUpdates の戻り値です。
type FetchResult struct {
	RunID           string        `json:"run_id"`
	InsertedCount   int           `json:"inserted_count"`
	PerOrganization []Diagnostics `json:"per_organization"`
}

// TrackingRun は組織ごとのフェッチ実行履歴です。
type TrackingRun struct {
	RunID          string
	OrganizationID uint
	Connector      string
	Fetched        int
	Duplicates     int
	Inserted       int
	Exhausted      bool
	Reasons        string
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Stats はダッシュボード向けの集計値です。
type Stats struct {
	Organizations     int64              `json:"organizations"`
	Updates           int64              `json:"updates"`
	UpdatesLast24h    int64              `json:"updates_last_24h"`
	UpdatesByCategory map[Category]int64 `json:"updates_by_category"`
}
