package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MonitorType selects the probe family a monitor runs.
type MonitorType string

const (
	MonitorTypeAPI  MonitorType = "API"
	MonitorTypeTCP  MonitorType = "TCP"
	MonitorTypePING MonitorType = "PING"
	MonitorTypeSSL  MonitorType = "SSL"
	MonitorTypeDNS  MonitorType = "DNS"
)

// Valid reports whether the monitor type is one the Kener API accepts.
func (t MonitorType) Valid() bool {
	switch t {
	case MonitorTypeAPI, MonitorTypeTCP, MonitorTypePING, MonitorTypeSSL, MonitorTypeDNS:
		return true
	}
	return false
}

// MonitorStatus enables or pauses a monitor without deleting it.
type MonitorStatus string

const (
	StatusActive MonitorStatus = "ACTIVE"
	StatusPaused MonitorStatus = "PAUSED"
)

// Valid reports whether the status is a value the Kener API accepts.
func (s MonitorStatus) Valid() bool {
	return s == StatusActive || s == StatusPaused
}

// State is the desired presence of a monitor on the remote service.
type State string

const (
	StatePresent State = "present"
	StateAbsent  State = "absent"
)

// Valid reports whether the state is one of present or absent.
func (s State) Valid() bool {
	return s == StatePresent || s == StateAbsent
}

// HostType is the address family of a probed host.
type HostType string

const (
	HostTypeIP4    HostType = "IP4"
	HostTypeIP6    HostType = "IP6"
	HostTypeDomain HostType = "DOMAIN"
)

// Valid reports whether the host type is a value the Kener API accepts.
func (t HostType) Valid() bool {
	return t == HostTypeIP4 || t == HostTypeIP6 || t == HostTypeDomain
}

// MatchType is how DNS resolution results are matched against expectations.
type MatchType string

const (
	MatchAny  MatchType = "ANY"
	MatchAll  MatchType = "ALL"
	MatchNone MatchType = "NONE"
)

// Valid reports whether the match type is a value the Kener API accepts.
func (t MatchType) Valid() bool {
	return t == MatchAny || t == MatchAll || t == MatchNone
}

// ValidLookupRecord reports whether record is a DNS record type Kener can query.
func ValidLookupRecord(record string) bool {
	switch record {
	case "A", "AAAA", "CNAME", "MX", "TXT", "NS", "SOA", "PTR":
		return true
	}
	return false
}

// Host is a single probed endpoint of a TCP or PING monitor.
type Host struct {
	Host          string   `json:"host" yaml:"host"`
	Port          int      `json:"port,omitempty" yaml:"port,omitempty"`
	Type          HostType `json:"type" yaml:"type"`
	TimeoutMillis int      `json:"timeout" yaml:"timeout"`
	Count         int      `json:"count,omitempty" yaml:"count,omitempty"`
}

// TypeData is the monitor-type specific configuration carried in the
// type_data payload field. Exactly one variant exists per probe family.
type TypeData interface {
	monitorTypeData()
}

// HostsData configures TCP and PING monitors.
type HostsData struct {
	Hosts []Host `json:"hosts" yaml:"hosts"`
}

// APIData configures API monitors.
type APIData struct {
	URL           string `json:"url" yaml:"url"`
	Method        string `json:"method" yaml:"method"`
	TimeoutMillis int    `json:"timeout" yaml:"timeout"`
}

// SSLData configures SSL certificate expiry monitors.
type SSLData struct {
	Host                   string `json:"host" yaml:"host"`
	Port                   int    `json:"port" yaml:"port"`
	DegradedRemainingHours int    `json:"degradedRemainingHours" yaml:"degradedRemainingHours"`
	DownRemainingHours     int    `json:"downRemainingHours" yaml:"downRemainingHours"`
}

// DNSData configures DNS resolution monitors.
type DNSData struct {
	Host         string    `json:"host,omitempty" yaml:"host,omitempty"`
	LookupRecord string    `json:"lookupRecord" yaml:"lookupRecord"`
	NameServer   string    `json:"nameServer" yaml:"nameServer"`
	MatchType    MatchType `json:"matchType" yaml:"matchType"`
	Values       []string  `json:"values" yaml:"values"`
}

func (*HostsData) monitorTypeData() {}
func (*APIData) monitorTypeData()   {}
func (*SSLData) monitorTypeData()   {}
func (*DNSData) monitorTypeData()   {}

// MonitorSpec is the desired state of a single monitor, keyed by tag.
type MonitorSpec struct {
	State        State
	Tag          string
	Name         string
	Status       MonitorStatus
	Cron         string
	CategoryName string
	Type         MonitorType
	TypeData     TypeData
}

// MonitorPayload is the request body for monitor create and update calls.
// TypeData serializes as a nested JSON object; the API returns it re-encoded
// as a string (see RemoteMonitor).
type MonitorPayload struct {
	ID           ID            `json:"id,omitempty"`
	Name         string        `json:"name"`
	Tag          string        `json:"tag"`
	Status       MonitorStatus `json:"status"`
	Cron         string        `json:"cron"`
	CategoryName string        `json:"category_name"`
	MonitorType  MonitorType   `json:"monitor_type"`
	TypeData     TypeData      `json:"type_data,omitempty"`
}

// RemoteMonitor is a monitor record as the Kener API returns it. The typed
// configuration arrives JSON-encoded inside the TypeData string; unknown
// extra fields in the response are ignored.
type RemoteMonitor struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	Tag          string `json:"tag"`
	Status       string `json:"status"`
	Cron         string `json:"cron"`
	CategoryName string `json:"category_name"`
	MonitorType  string `json:"monitor_type"`
	TypeData     string `json:"type_data"`
}

// ID identifies a monitor record. Kener assigns numeric identifiers and
// returns them as JSON numbers; other deployments use opaque strings. Both
// forms round-trip through the string representation.
type ID string

func (id ID) String() string { return string(id) }

// MarshalJSON re-emits canonical base-10 integers as JSON numbers so update
// payloads carry the identifier in the form the API handed out.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(string(id)), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts a JSON number, a JSON string, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	switch {
	case string(data) == "null":
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("monitor id must be a string or number: %w", err)
		}
		*id = ID(n.String())
		return nil
	}
}

// DecodeTypeData decodes the string form of a monitor's typed configuration
// into the variant matching monitorType. Empty strings and JSON null decode
// to nil without error; anything else that fails to parse is reported so
// callers never mistake a garbled record for matching state.
func DecodeTypeData(monitorType MonitorType, raw string) (TypeData, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var data TypeData
	switch monitorType {
	case MonitorTypeTCP, MonitorTypePING:
		data = &HostsData{}
	case MonitorTypeAPI:
		data = &APIData{}
	case MonitorTypeSSL:
		data = &SSLData{}
	case MonitorTypeDNS:
		data = &DNSData{}
	default:
		return nil, fmt.Errorf("unsupported monitor type %q", monitorType)
	}

	if err := json.Unmarshal([]byte(trimmed), data); err != nil {
		return nil, fmt.Errorf("parse %s type_data: %w", monitorType, err)
	}
	return data, nil
}
