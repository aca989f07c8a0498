package reconcile

import (
	"fmt"

	"github.com/wheecious/kener/pkg/types"
)

// BuildPayload assembles the request body for a desired monitor. The typed
// configuration is validated against the monitor type's required fields; a
// zero value ("" or 0 or an empty list) counts as missing. The builder
// performs no I/O and never fills defaults.
func BuildPayload(spec types.MonitorSpec) (types.MonitorPayload, error) {
	payload := types.MonitorPayload{
		Name:         spec.Name,
		Tag:          spec.Tag,
		Status:       spec.Status,
		Cron:         spec.Cron,
		CategoryName: spec.CategoryName,
		MonitorType:  spec.Type,
	}

	switch spec.Type {
	case types.MonitorTypeTCP, types.MonitorTypePING:
		hosts, ok := spec.TypeData.(*types.HostsData)
		if !ok || hosts == nil || len(hosts.Hosts) == 0 {
			return types.MonitorPayload{}, &ValidationError{Field: "hosts", MonitorType: spec.Type}
		}
		for i, h := range hosts.Hosts {
			if h.Host == "" {
				return types.MonitorPayload{}, &ValidationError{
					Field:       fmt.Sprintf("hosts[%d].host", i),
					MonitorType: spec.Type,
				}
			}
		}
		payload.TypeData = hosts

	case types.MonitorTypeAPI:
		data, ok := spec.TypeData.(*types.APIData)
		if !ok || data == nil {
			return types.MonitorPayload{}, &ValidationError{Field: "url", MonitorType: spec.Type}
		}
		if err := validateAPIData(data); err != nil {
			return types.MonitorPayload{}, err
		}
		payload.TypeData = data

	case types.MonitorTypeSSL:
		data, ok := spec.TypeData.(*types.SSLData)
		if !ok || data == nil {
			return types.MonitorPayload{}, &ValidationError{Field: "host", MonitorType: spec.Type}
		}
		if err := validateSSLData(data); err != nil {
			return types.MonitorPayload{}, err
		}
		payload.TypeData = data

	case types.MonitorTypeDNS:
		data, ok := spec.TypeData.(*types.DNSData)
		if !ok || data == nil {
			return types.MonitorPayload{}, &ValidationError{Field: "lookupRecord", MonitorType: spec.Type}
		}
		if err := validateDNSData(data); err != nil {
			return types.MonitorPayload{}, err
		}
		payload.TypeData = data

	default:
		return types.MonitorPayload{}, fmt.Errorf("unsupported monitor type %q", spec.Type)
	}

	return payload, nil
}

// fieldCheck tables preserve the field order the API documents; the first
// missing field wins.
type fieldCheck struct {
	field   string
	missing bool
}

func validateAPIData(d *types.APIData) error {
	return firstMissing(types.MonitorTypeAPI, []fieldCheck{
		{"url", d.URL == ""},
		{"method", d.Method == ""},
		{"timeout", d.TimeoutMillis == 0},
	})
}

func validateSSLData(d *types.SSLData) error {
	return firstMissing(types.MonitorTypeSSL, []fieldCheck{
		{"host", d.Host == ""},
		{"port", d.Port == 0},
		{"degradedRemainingHours", d.DegradedRemainingHours == 0},
		{"downRemainingHours", d.DownRemainingHours == 0},
	})
}

func validateDNSData(d *types.DNSData) error {
	return firstMissing(types.MonitorTypeDNS, []fieldCheck{
		{"lookupRecord", d.LookupRecord == ""},
		{"nameServer", d.NameServer == ""},
		{"matchType", d.MatchType == ""},
		{"values", len(d.Values) == 0},
	})
}

func firstMissing(monitorType types.MonitorType, checks []fieldCheck) error {
	for _, c := range checks {
		if c.missing {
			return &ValidationError{Field: c.field, MonitorType: monitorType}
		}
	}
	return nil
}
