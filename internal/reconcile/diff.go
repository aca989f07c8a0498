package reconcile

import (
	"github.com/wheecious/kener/pkg/types"
)

// HasChanged reports whether the desired payload differs from the remote
// record. Only the fields the payload carries participate in the comparison;
// extra fields on the remote record never produce a diff.
//
// The remote type_data string is decoded into the typed variant for the
// desired monitor type before comparing, so formatting differences in the
// stored JSON do not register as changes. A remote type_data that is empty
// or null counts as absent; one that fails to parse aborts with a
// DecodeError.
func HasChanged(desired types.MonitorPayload, remote types.RemoteMonitor) (bool, error) {
	if desired.Name != remote.Name ||
		desired.Tag != remote.Tag ||
		string(desired.Status) != remote.Status ||
		desired.Cron != remote.Cron ||
		desired.CategoryName != remote.CategoryName ||
		string(desired.MonitorType) != remote.MonitorType {
		return true, nil
	}

	remoteData, err := types.DecodeTypeData(desired.MonitorType, remote.TypeData)
	if err != nil {
		return false, &DecodeError{Tag: remote.Tag, MonitorType: desired.MonitorType, Err: err}
	}

	return !typeDataEqual(desired.TypeData, remoteData), nil
}

func typeDataEqual(a, b types.TypeData) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case *types.HostsData:
		bv, ok := b.(*types.HostsData)
		return ok && hostsEqual(av.Hosts, bv.Hosts)
	case *types.APIData:
		bv, ok := b.(*types.APIData)
		return ok && *av == *bv
	case *types.SSLData:
		bv, ok := b.(*types.SSLData)
		return ok && *av == *bv
	case *types.DNSData:
		bv, ok := b.(*types.DNSData)
		return ok && av.Host == bv.Host &&
			av.LookupRecord == bv.LookupRecord &&
			av.NameServer == bv.NameServer &&
			av.MatchType == bv.MatchType &&
			stringsEqual(av.Values, bv.Values)
	default:
		return false
	}
}

// List order is significant: the API preserves it, and reordering hosts or
// expected values is a real change.
func hostsEqual(a, b []types.Host) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
