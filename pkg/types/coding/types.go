// Package coding defines the public wire types of TextCoder: the per-text
// coding result with its stable column order, and the request/response
// bodies of the coding and preset endpoints.
package coding

import (
	"strconv"
)

// EngineVersion is reported as code_version on every coded row.
const EngineVersion = "0.3.0"

// AdHocPresetVersion is reported as preset_version when no preset was used.
const AdHocPresetVersion = "ad-hoc"

// OutputColumns is the stable column order of a coding Result.
var OutputColumns = []string{
	"agent_supernatural",
	"reason_agent",
	"presence_label",
	"reason_presence",
	"visual",
	"reason_visual",
	"auditory",
	"reason_auditory",
	"tactile",
	"reason_tactile",
	"olfactory",
	"reason_olfactory",
	"gustatory",
	"reason_gustatory",
	"sensorimotor",
	"reason_sensorimotor",
	"conf",
	"motor",
	"reason_motor",
	"object",
	"reason_object",
	"valence_label",
	"reason_valence",
	"setting_hits",
	"reason_setting",
}

// Result is the coding of one text. Field order matches OutputColumns.
type Result struct {
	AgentSupernatural  int    `json:"agent_supernatural"`
	ReasonAgent        string `json:"reason_agent"`
	PresenceLabel      string `json:"presence_label"`
	ReasonPresence     string `json:"reason_presence"`
	Visual             int    `json:"visual"`
	ReasonVisual       string `json:"reason_visual"`
	Auditory           int    `json:"auditory"`
	ReasonAuditory     string `json:"reason_auditory"`
	Tactile            int    `json:"tactile"`
	ReasonTactile      string `json:"reason_tactile"`
	Olfactory          int    `json:"olfactory"`
	ReasonOlfactory    string `json:"reason_olfactory"`
	Gustatory          int    `json:"gustatory"`
	ReasonGustatory    string `json:"reason_gustatory"`
	Sensorimotor       int    `json:"sensorimotor"`
	ReasonSensorimotor string `json:"reason_sensorimotor"`
	Conf               int    `json:"conf"`
	Motor              int    `json:"motor"`
	ReasonMotor        string `json:"reason_motor"`
	Object             int    `json:"object"`
	ReasonObject       string `json:"reason_object"`
	ValenceLabel       string `json:"valence_label"`
	ReasonValence      string `json:"reason_valence"`
	SettingHits        string `json:"setting_hits"`
	ReasonSetting      string `json:"reason_setting"`
}

// Values renders the result as strings in OutputColumns order.
func (r Result) Values() []string {
	itoa := strconv.Itoa
	return []string{
		itoa(r.AgentSupernatural), r.ReasonAgent,
		r.PresenceLabel, r.ReasonPresence,
		itoa(r.Visual), r.ReasonVisual,
		itoa(r.Auditory), r.ReasonAuditory,
		itoa(r.Tactile), r.ReasonTactile,
		itoa(r.Olfactory), r.ReasonOlfactory,
		itoa(r.Gustatory), r.ReasonGustatory,
		itoa(r.Sensorimotor), r.ReasonSensorimotor,
		itoa(r.Conf),
		itoa(r.Motor), r.ReasonMotor,
		itoa(r.Object), r.ReasonObject,
		r.ValenceLabel, r.ReasonValence,
		r.SettingHits, r.ReasonSetting,
	}
}

// Map returns the result keyed by column name.
func (r Result) Map() map[string]any {
	vals := r.Values()
	out := make(map[string]any, len(OutputColumns))
	for i, col := range OutputColumns {
		out[col] = vals[i]
	}
	for col, v := range map[string]int{
		"agent_supernatural": r.AgentSupernatural,
		"visual":             r.Visual,
		"auditory":           r.Auditory,
		"tactile":            r.Tactile,
		"olfactory":          r.Olfactory,
		"gustatory":          r.Gustatory,
		"sensorimotor":       r.Sensorimotor,
		"conf":               r.Conf,
		"motor":              r.Motor,
		"object":             r.Object,
	} {
		out[col] = v
	}
	return out
}

// Positives lists the binary dimensions that fired, for metrics.
func (r Result) Positives() []string {
	var out []string
	for _, d := range []struct {
		name string
		v    int
	}{
		{"agent_supernatural", r.AgentSupernatural},
		{"visual", r.Visual},
		{"auditory", r.Auditory},
		{"tactile", r.Tactile},
		{"olfactory", r.Olfactory},
		{"gustatory", r.Gustatory},
		{"sensorimotor", r.Sensorimotor},
		{"motor", r.Motor},
		{"object", r.Object},
	} {
		if d.v == 1 {
			out = append(out, d.name)
		}
	}
	if r.PresenceLabel != "" {
		out = append(out, "presence")
	}
	if r.ValenceLabel != "" {
		out = append(out, "valence")
	}
	if r.SettingHits != "" {
		out = append(out, "setting")
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Service bodies
// ─────────────────────────────────────────────────────────────────────────────

// InRow is one text submitted for coding.
type InRow struct {
	Row   int     `json:"row"`
	NewID *string `json:"new_id,omitempty"`
	Text  string  `json:"text"`
}

// CodeRequest is the body of POST /code. Preset is "name@version" or empty
// for the base lexicon.
type CodeRequest struct {
	Rows   []InRow `json:"rows" validate:"dive"`
	Preset string  `json:"preset,omitempty"`
}

// CodedRow is one coded row of a CodeResponse.
type CodedRow struct {
	Row           int    `json:"row"`
	CodeVersion   string `json:"code_version"`
	PresetVersion string `json:"preset_version"`
	Coded         Result `json:"coded"`
}

// CodeResponse is the body returned by POST /code.
type CodeResponse struct {
	Results []CodedRow `json:"results"`
	// RunID is set when the run was persisted.
	RunID string `json:"run_id,omitempty"`
}

// PresetList is the body returned by GET /presets.
type PresetList struct {
	Presets []string `json:"presets"`
}

// ValidationResult is the body returned by POST /validate_preset.
type ValidationResult struct {
	OK    bool     `json:"ok"`
	Error string   `json:"error,omitempty"`
	Path  []string `json:"path,omitempty"`
}

// ExtendRequest is the body of POST /extend_lexicon.
type ExtendRequest struct {
	BasePreset string              `json:"base_preset,omitempty"`
	Categories []string            `json:"categories"`
	Keywords   map[string][]string `json:"keywords,omitempty"`
	Exceptions map[string][]string `json:"exceptions,omitempty"`
	Policy     map[string]any      `json:"policy,omitempty"`
}

// Proposal is one suggested lexicon addition.
type Proposal struct {
	Term   string `json:"term"`
	Source string `json:"source"`
	Base   string `json:"base"`
}

// ExtendResult is the body returned by POST /extend_lexicon.
type ExtendResult struct {
	Proposed  map[string][]Proposal `json:"proposed"`
	Conflicts []string              `json:"conflicts"`
	Notes     []string              `json:"notes"`
}

// WebhookResult is the body returned by POST /gh/webhook.
type WebhookResult struct {
	OK    bool `json:"ok"`
	Count int  `json:"count"`
}

// Job is a coding request carried over the message bus.
type Job struct {
	JobID  string  `json:"job_id"`
	Preset string  `json:"preset,omitempty"`
	Rows   []InRow `json:"rows"`
}

// JobResult is the outcome of a Job published back to the bus.
type JobResult struct {
	JobID   string     `json:"job_id"`
	RunID   string     `json:"run_id,omitempty"`
	Results []CodedRow `json:"results,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// JobAccepted is the body returned by POST /jobs.
type JobAccepted struct {
	JobID string `json:"job_id"`
}

//Personal.AI order the ending
