package rules

import "github.com/gyaneshwarpardhi/wifilab/internal/field"

// EditableInfo is the derived set of field keys that are editable for one
// selected case. It is recomputable at any time from the case path alone
// and is cached on the session, never persisted.
type EditableInfo struct {
	CaseType field.CaseType
	fields   map[string]struct{}
}

// Has reports whether key is editable for the case.
func (e EditableInfo) Has(key string) bool {
	_, ok := e.fields[key]
	return ok
}

// Fields returns the editable keys (unordered).
func (e EditableInfo) Fields() []string {
	out := make([]string, 0, len(e.fields))
	for k := range e.fields {
		out = append(out, k)
	}
	return out
}

// Field groups unioned into EditableInfo per case type. The base group is
// editable for every case.
var (
	baseFields = []string{
		"connect_type.type",
		"connect_type.telnet.ip",
		"connect_type.adb.device",
		"connect_type.third_party.enabled",
		"connect_type.third_party.wait_seconds",
		"router.name",
		"router.address",
		"serial_port.status",
		"serial_port.port",
		"serial_port.baud",
		"system.version",
		"system.kernel_version",
		"pair_num",
	}
	throughputFields = []string{
		"rvr.tool",
		"rvr.iperf.path",
		"rvr.iperf.server_cmd",
		"rvr.iperf.client_cmd",
		"rvr.ixchariot.path",
		"rvr.repeat",
		"csv_path",
	}
	attenuatorFields = []string{
		"rf_solution.model",
		"rf_solution.step",
		"rf_solution.RC4DAT-8G-95.idVendor",
		"rf_solution.RC4DAT-8G-95.idProduct",
		"rf_solution.RC4DAT-8G-95.ip_address",
		"rf_solution.RADIORACK-4-220.ip_address",
		"rf_solution.LDA-908V-8.ip_address",
		"rf_solution.LDA-908V-8.channels",
	}
	turntableFields = []string{
		"turntable.model",
		"turntable.ip_address",
		"turntable.step",
		"turntable.static_db",
		"turntable.target_rssi",
		"corner_angle.step",
	}
	stabilityFields = []string{
		"check_point.ping",
		"check_point.ping_targets",
	}
	compatibilityFields = []string{
		"compatibility.nic",
		"compatibility.power_ctrl.relays",
	}
)

// ComputeEditable classifies casePath and unions the field groups declared
// editable for that case type. Same path, same result.
func ComputeEditable(casePath string) EditableInfo {
	t := field.ClassifyCase(casePath)
	info := EditableInfo{CaseType: t, fields: make(map[string]struct{})}
	add := func(groups ...[]string) {
		for _, g := range groups {
			for _, k := range g {
				info.fields[k] = struct{}{}
			}
		}
	}

	add(baseFields)
	if t.NeedsThroughput() {
		add(throughputFields)
	}
	switch t {
	case field.CasePerformance:
		info.fields["rvr.throughput_threshold"] = struct{}{}
	case field.CaseRVR:
		add(attenuatorFields)
	case field.CaseRVO:
		add(attenuatorFields, turntableFields)
	case field.CaseStability:
		add(stabilityFields)
	case field.CaseCompatibility:
		add(compatibilityFields)
	}
	return info
}
