package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wheecious/kener/pkg/types"
)

// Defaults applied to fields a manifest leaves unset. They match the
// defaults Kener itself applies when a monitor is created by hand.
const (
	DefaultName         = "Kener Monitor"
	DefaultCron         = "* * * * *"
	DefaultCategoryName = "Home"

	defaultHostTimeoutMillis = 3000
)

// Document is one monitor declaration as written on disk.
type Document struct {
	State   types.State `yaml:"state"`
	Monitor MonitorDoc  `yaml:"monitor"`
}

// MonitorDoc is the monitor section of a manifest. At most one typed-data
// section may be set, and it must agree with monitor_type.
type MonitorDoc struct {
	Tag          string              `yaml:"tag"`
	Name         string              `yaml:"name"`
	Status       types.MonitorStatus `yaml:"status"`
	Cron         string              `yaml:"cron"`
	CategoryName string              `yaml:"category_name"`
	MonitorType  types.MonitorType   `yaml:"monitor_type"`
	Hosts        []types.Host        `yaml:"hosts"`
	API          *types.APIData      `yaml:"api"`
	SSL          *types.SSLData      `yaml:"ssl"`
	DNS          *types.DNSData      `yaml:"dns"`
}

// Load reads and parses the manifest file at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open manifest %q: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read manifest %q: %w", path, err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %q: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a single manifest document, applies defaults, and validates
// it. Unknown fields and multi-document streams are rejected.
func Parse(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty manifest")
		}
		return nil, fmt.Errorf("parse: %w", err)
	}
	var extra Document
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("manifest must contain exactly one document")
	}

	doc.applyDefaults()
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Document) applyDefaults() {
	if d.State == "" {
		d.State = types.StatePresent
	}
	m := &d.Monitor
	if m.Name == "" {
		m.Name = DefaultName
	}
	if m.Status == "" {
		m.Status = types.StatusActive
	}
	if m.Cron == "" {
		m.Cron = DefaultCron
	}
	if m.CategoryName == "" {
		m.CategoryName = DefaultCategoryName
	}
	if m.MonitorType == "" {
		m.MonitorType = types.MonitorTypePING
	}
	for i := range m.Hosts {
		if m.Hosts[i].Type == "" {
			m.Hosts[i].Type = types.HostTypeIP4
		}
		if m.Hosts[i].TimeoutMillis == 0 {
			m.Hosts[i].TimeoutMillis = defaultHostTimeoutMillis
		}
	}
}

func (d *Document) validate() error {
	if !d.State.Valid() {
		return fmt.Errorf("invalid state %q", d.State)
	}
	m := &d.Monitor
	if m.Tag == "" {
		return errors.New("monitor.tag is required")
	}
	if !m.MonitorType.Valid() {
		return fmt.Errorf("invalid monitor_type %q", m.MonitorType)
	}
	if !m.Status.Valid() {
		return fmt.Errorf("invalid status %q", m.Status)
	}
	if err := m.checkSections(); err != nil {
		return err
	}
	for i, h := range m.Hosts {
		if !h.Type.Valid() {
			return fmt.Errorf("invalid hosts[%d].type %q", i, h.Type)
		}
	}
	if m.DNS != nil {
		if m.DNS.LookupRecord != "" && !types.ValidLookupRecord(m.DNS.LookupRecord) {
			return fmt.Errorf("invalid dns.lookupRecord %q", m.DNS.LookupRecord)
		}
		if m.DNS.MatchType != "" && !m.DNS.MatchType.Valid() {
			return fmt.Errorf("invalid dns.matchType %q", m.DNS.MatchType)
		}
	}
	return nil
}

// sectionName maps a monitor type to the typed-data section it reads.
func sectionName(t types.MonitorType) string {
	switch t {
	case types.MonitorTypeTCP, types.MonitorTypePING:
		return "hosts"
	case types.MonitorTypeAPI:
		return "api"
	case types.MonitorTypeSSL:
		return "ssl"
	case types.MonitorTypeDNS:
		return "dns"
	}
	return ""
}

func (m *MonitorDoc) checkSections() error {
	var set []string
	if len(m.Hosts) > 0 {
		set = append(set, "hosts")
	}
	if m.API != nil {
		set = append(set, "api")
	}
	if m.SSL != nil {
		set = append(set, "ssl")
	}
	if m.DNS != nil {
		set = append(set, "dns")
	}
	if len(set) > 1 {
		return fmt.Errorf("monitor declares multiple typed-data sections: %s", strings.Join(set, ", "))
	}
	if len(set) == 1 {
		if want := sectionName(m.MonitorType); set[0] != want {
			return fmt.Errorf("%s section does not match monitor_type %s", set[0], m.MonitorType)
		}
	}
	return nil
}

// Spec converts the document into the desired state handed to the
// reconciler. The returned spec does not alias the document.
func (d *Document) Spec() types.MonitorSpec {
	m := d.Monitor
	spec := types.MonitorSpec{
		State:        d.State,
		Tag:          m.Tag,
		Name:         m.Name,
		Status:       m.Status,
		Cron:         m.Cron,
		CategoryName: m.CategoryName,
		Type:         m.MonitorType,
	}
	switch {
	case len(m.Hosts) > 0:
		hosts := make([]types.Host, len(m.Hosts))
		copy(hosts, m.Hosts)
		spec.TypeData = &types.HostsData{Hosts: hosts}
	case m.API != nil:
		api := *m.API
		spec.TypeData = &api
	case m.SSL != nil:
		ssl := *m.SSL
		spec.TypeData = &ssl
	case m.DNS != nil:
		dns := *m.DNS
		if dns.Values != nil {
			dns.Values = append([]string(nil), dns.Values...)
		}
		spec.TypeData = &dns
	}
	return spec
}
