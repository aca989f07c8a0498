package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wheecious/kener/pkg/types"
)

const sampleManifest = `
state: present
monitor:
  tag: backend-api
  name: Backend API
  status: ACTIVE
  cron: "*/5 * * * *"
  category_name: Services
  monitor_type: API
  api:
    url: https://example.com/healthz
    method: GET
    timeout: 5000
`

func TestParseFullManifest(t *testing.T) {
	doc, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if doc.State != types.StatePresent {
		t.Fatalf("unexpected state: %s", doc.State)
	}
	if doc.Monitor.Tag != "backend-api" || doc.Monitor.MonitorType != types.MonitorTypeAPI {
		t.Fatalf("unexpected monitor: %+v", doc.Monitor)
	}

	spec := doc.Spec()
	if spec.Tag != "backend-api" || spec.Name != "Backend API" || spec.Cron != "*/5 * * * *" {
		t.Fatalf("unexpected spec: %+v", spec)
	}
	api, ok := spec.TypeData.(*types.APIData)
	if !ok {
		t.Fatalf("expected APIData, got %T", spec.TypeData)
	}
	if api.URL != "https://example.com/healthz" || api.Method != "GET" || api.TimeoutMillis != 5000 {
		t.Fatalf("unexpected api data: %+v", api)
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	doc, err := Parse([]byte(`
monitor:
  tag: gateway
  hosts:
    - host: 10.0.0.1
`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if doc.State != types.StatePresent {
		t.Fatalf("expected present default, got %s", doc.State)
	}
	m := doc.Monitor
	if m.Name != DefaultName || m.Cron != DefaultCron || m.CategoryName != DefaultCategoryName {
		t.Fatalf("unexpected base defaults: %+v", m)
	}
	if m.Status != types.StatusActive || m.MonitorType != types.MonitorTypePING {
		t.Fatalf("unexpected status/type defaults: %+v", m)
	}
	if len(m.Hosts) != 1 {
		t.Fatalf("expected 1 host, got %d", len(m.Hosts))
	}
	if m.Hosts[0].Type != types.HostTypeIP4 || m.Hosts[0].TimeoutMillis != defaultHostTimeoutMillis {
		t.Fatalf("unexpected host defaults: %+v", m.Hosts[0])
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(`
monitor:
  tag: gateway
  interval: 60
`))
	if err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestParseRejectsMultipleDocuments(t *testing.T) {
	_, err := Parse([]byte(`
monitor:
  tag: one
---
monitor:
  tag: two
`))
	if err == nil || !strings.Contains(err.Error(), "exactly one document") {
		t.Fatalf("expected multi-document error, got %v", err)
	}
}

func TestParseRejectsEmptyInput(t *testing.T) {
	if _, err := Parse([]byte("")); err == nil {
		t.Fatalf("expected error for empty manifest")
	}
}

func TestParseRequiresTag(t *testing.T) {
	_, err := Parse([]byte(`
monitor:
  name: Unnamed
`))
	if err == nil || !strings.Contains(err.Error(), "tag is required") {
		t.Fatalf("expected tag error, got %v", err)
	}
}

func TestParseValidatesEnums(t *testing.T) {
	cases := []struct {
		name     string
		yaml     string
		wantPart string
	}{
		{
			name:     "state",
			yaml:     "state: gone\nmonitor:\n  tag: t\n",
			wantPart: "invalid state",
		},
		{
			name:     "monitor type",
			yaml:     "monitor:\n  tag: t\n  monitor_type: HTTP\n",
			wantPart: "invalid monitor_type",
		},
		{
			name:     "status",
			yaml:     "monitor:\n  tag: t\n  status: ENABLED\n",
			wantPart: "invalid status",
		},
		{
			name:     "host type",
			yaml:     "monitor:\n  tag: t\n  hosts:\n    - host: 10.0.0.1\n      type: IPX\n",
			wantPart: "invalid hosts[0].type",
		},
		{
			name:     "lookup record",
			yaml:     "monitor:\n  tag: t\n  monitor_type: DNS\n  dns:\n    lookupRecord: WWW\n",
			wantPart: "invalid dns.lookupRecord",
		},
		{
			name:     "match type",
			yaml:     "monitor:\n  tag: t\n  monitor_type: DNS\n  dns:\n    lookupRecord: A\n    matchType: SOME\n",
			wantPart: "invalid dns.matchType",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if err == nil || !strings.Contains(err.Error(), tc.wantPart) {
				t.Fatalf("expected %q error, got %v", tc.wantPart, err)
			}
		})
	}
}

func TestParseRejectsSectionMismatch(t *testing.T) {
	_, err := Parse([]byte(`
monitor:
  tag: gateway
  monitor_type: API
  hosts:
    - host: 10.0.0.1
`))
	if err == nil || !strings.Contains(err.Error(), "does not match monitor_type") {
		t.Fatalf("expected section mismatch error, got %v", err)
	}
}

func TestParseRejectsMultipleSections(t *testing.T) {
	_, err := Parse([]byte(`
monitor:
  tag: gateway
  monitor_type: API
  api:
    url: https://example.com
  ssl:
    host: example.com
`))
	if err == nil || !strings.Contains(err.Error(), "multiple typed-data sections") {
		t.Fatalf("expected multiple sections error, got %v", err)
	}
}

func TestParseAllowsMissingSection(t *testing.T) {
	doc, err := Parse([]byte(`
state: absent
monitor:
  tag: gateway
  monitor_type: TCP
`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if doc.Spec().TypeData != nil {
		t.Fatalf("expected no typed data, got %+v", doc.Spec().TypeData)
	}
}

func TestLoadReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "monitor.yaml")

	if err := os.WriteFile(path, []byte(sampleManifest), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if doc.Monitor.Tag != "backend-api" {
		t.Fatalf("unexpected tag: %s", doc.Monitor.Tag)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestSpecVariants(t *testing.T) {
	doc, err := Parse([]byte(`
monitor:
  tag: cert-watch
  monitor_type: SSL
  ssl:
    host: example.com
    port: 443
    degradedRemainingHours: 168
    downRemainingHours: 24
`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	ssl, ok := doc.Spec().TypeData.(*types.SSLData)
	if !ok {
		t.Fatalf("expected SSLData, got %T", doc.Spec().TypeData)
	}
	if ssl.Host != "example.com" || ssl.Port != 443 {
		t.Fatalf("unexpected ssl data: %+v", ssl)
	}

	doc, err = Parse([]byte(`
monitor:
  tag: ns-check
  monitor_type: DNS
  dns:
    lookupRecord: A
    nameServer: 8.8.8.8
    matchType: ANY
    values: ["93.184.216.34"]
`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	dns, ok := doc.Spec().TypeData.(*types.DNSData)
	if !ok {
		t.Fatalf("expected DNSData, got %T", doc.Spec().TypeData)
	}
	if dns.LookupRecord != "A" || dns.MatchType != types.MatchAny || len(dns.Values) != 1 {
		t.Fatalf("unexpected dns data: %+v", dns)
	}
}
