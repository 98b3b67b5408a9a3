package api

import (
	"encoding/json"
)

// LoginResponse is returned by POST /customer-video-login.
type LoginResponse struct {
	Token         string `json:"token"`
	CustomerName  string `json:"customer_name"`
	UserType      string `json:"user_type"`
	ChallengeName string `json:"ChallengeName"`
	Session       string `json:"Session"`
}

// MFASetupResponse is returned by POST /auth/setup-mfa.
type MFASetupResponse struct {
	SecretCode string `json:"SecretCode"`
	Session    string `json:"Session"`
	Email      string `json:"email"`
}

// ChangePasswordResponse carries the new access token issued after a
// password change.
type ChangePasswordResponse struct {
	Token string `json:"token"`
}

// LanguageEntry is one row of the master or top-languages list. The
// backend sends either a bare string or an object keyed by "language"
// or "name".
type LanguageEntry struct {
	Language string
}

func (l *LanguageEntry) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		l.Language = s
		return nil
	}
	var obj struct {
		Language string `json:"language"`
		Name     string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.Language != "" {
		l.Language = obj.Language
	} else {
		l.Language = obj.Name
	}
	return nil
}

// AvailabilityEntry is one row of GET /get-availability-by-languages.
// Language names may carry a _Video or _Audio suffix; rows may also be
// bare strings (name only, zero counts) and counts may arrive in either
// snake_case or camelCase.
type AvailabilityEntry struct {
	Language          string
	OptedInCountVideo int
	OptedInCountAudio int
}

func (a *AvailabilityEntry) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Language = s
		a.OptedInCountVideo = 0
		a.OptedInCountAudio = 0
		return nil
	}
	var obj struct {
		Language   string       `json:"language"`
		SnakeVideo *json.Number `json:"opted_in_count_video"`
		SnakeAudio *json.Number `json:"opted_in_count_audio"`
		CamelVideo *json.Number `json:"optedInCountVideo"`
		CamelAudio *json.Number `json:"optedInCountAudio"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	a.Language = obj.Language
	a.OptedInCountVideo = numberToCount(obj.SnakeVideo, obj.CamelVideo)
	a.OptedInCountAudio = numberToCount(obj.SnakeAudio, obj.CamelAudio)
	return nil
}

// numberToCount resolves the first present numeric field to a non-negative
// count, treating malformed values as zero.
func numberToCount(nums ...*json.Number) int {
	for _, n := range nums {
		if n == nil {
			continue
		}
		f, err := n.Float64()
		if err != nil || f < 0 {
			return 0
		}
		return int(f)
	}
	return 0
}

// CallRecord is one row of GET /list-calls-history-video. Timestamps stay
// wire-format strings here; parsing to UTC instants happens in the history
// package.
type CallRecord struct {
	StartTimestamp  string   `json:"engagement_start_ts"`
	EndTimestamp    string   `json:"engagement_end_ts"`
	Channel         string   `json:"channel"`
	Language        string   `json:"language"`
	InterpreterID   string   `json:"interpreter_answered_s_id"`
	DurationSeconds *float64 `json:"interpretation_duration_s"`
	BilledAmount    *float64 `json:"billed_amount"`
}

// CallHistoryPage is one page of call records plus the server total.
type CallHistoryPage struct {
	Records []CallRecord
	Total   int
}

// UsageTotals is the body of GET /get-usage-by-video-customer. The backend
// has shipped both long and short key names for the same quantities.
type UsageTotals struct {
	TotalCalls   *int     `json:"total_calls"`
	Calls        *int     `json:"calls"`
	TotalMinutes *float64 `json:"total_minutes"`
	Minutes      *float64 `json:"minutes"`
}

// LanguageUsageRow is one row of GET /list-languages-usage-by-customer.
// Seconds and minutes variants coexist; reconciliation lives in the usage
// package.
type LanguageUsageRow struct {
	Language     string   `json:"language"`
	TotalCalls   int      `json:"total_calls"`
	TotalSeconds *float64 `json:"total_seconds"`
	Seconds      *float64 `json:"seconds"`
	TotalMinutes *float64 `json:"total_minutes"`
	Minutes      *float64 `json:"minutes"`
}

// LanguageUsagePage is one page of per-language usage plus the customer's
// grand-total seconds, which is the percentage denominator.
type LanguageUsagePage struct {
	Rows                   []LanguageUsageRow
	Total                  int
	TotalSecondsByCustomer float64
}

// Profile is the body of GET/PUT /customer/profile.
type Profile struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// VideoAccount is the inner payload of GET /get-customer-video-account-by-id.
type VideoAccount struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Phone       string `json:"phone"`
	PhoneNumber string `json:"phone_number"`
	AccountType string `json:"account_type"`
}

// ContactPhone returns whichever phone field the backend populated.
func (v VideoAccount) ContactPhone() string {
	if v.Phone != "" {
		return v.Phone
	}
	return v.PhoneNumber
}

// VideoAccountUpdate is the body of POST /user-update-customer-video-account.
type VideoAccountUpdate struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
}

// FlowData is the body of POST /store-video-flow-data. Field names are
// PascalCase on the wire.
type FlowData struct {
	EngagementID string `json:"EngagementId"`
	Language     string `json:"Language"`
	LanguageDB   string `json:"LanguageDB"`
	CallType     string `json:"CallType"`
}
