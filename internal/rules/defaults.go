package rules

import "github.com/gyaneshwarpardhi/wifilab/internal/field"

// FieldCatalog lists every dotted field key the config page knows about.
// Rule targets and editable-info sets are validated against it.
func FieldCatalog() []string {
	return []string{
		"connect_type.type",
		"connect_type.telnet.ip",
		"connect_type.adb.device",
		"connect_type.third_party.enabled",
		"connect_type.third_party.wait_seconds",
		"system.version",
		"system.kernel_version",
		"router.name",
		"router.address",
		"serial_port.status",
		"serial_port.port",
		"serial_port.baud",
		"rf_solution.model",
		"rf_solution.step",
		"rf_solution.RC4DAT-8G-95.idVendor",
		"rf_solution.RC4DAT-8G-95.idProduct",
		"rf_solution.RC4DAT-8G-95.ip_address",
		"rf_solution.RADIORACK-4-220.ip_address",
		"rf_solution.LDA-908V-8.ip_address",
		"rf_solution.LDA-908V-8.channels",
		"turntable.model",
		"turntable.ip_address",
		"turntable.step",
		"turntable.static_db",
		"turntable.target_rssi",
		"corner_angle.step",
		"rvr.tool",
		"rvr.iperf.path",
		"rvr.iperf.server_cmd",
		"rvr.iperf.client_cmd",
		"rvr.ixchariot.path",
		"rvr.repeat",
		"rvr.throughput_threshold",
		"pair_num",
		"check_point.ping",
		"check_point.ping_targets",
		"compatibility.nic",
		"compatibility.power_ctrl.relays",
		"csv_path",
		"software_info.software_version",
		"software_info.driver_version",
		"hardware_info.hardware_version",
		"project.main_chip",
		"project.wifi_module",
		"project.interface",
	}
}

// Options carries environment hooks referenced by the default rules.
type Options struct {
	// SerialPorts enumerates selectable serial ports for set_options.
	SerialPorts func() []string
}

func (o Options) serialPorts(field.Values) any {
	if o.SerialPorts == nil {
		return []string{"No serial ports detected"}
	}
	ports := o.SerialPorts()
	if len(ports) == 0 {
		return []string{"No serial ports detected"}
	}
	return ports
}

// DefaultSpecs returns the built-in rule set for the config page. The
// registry keeps rules additive: every behaviour below is one record, and
// the evaluator stays a single interpreter.
func DefaultSpecs(opts Options) []Spec {
	return []Spec{
		// DUT connection branching. The telnet rule is the canonical pair:
		// when inactive its inverse hides the telnet address and re-shows
		// the adb device picker.
		{
			Trigger: "connect_type.type",
			When:    `connect_type.type == "telnet"`,
			Effects: []Effect{
				{Field: "connect_type.telnet.ip", Kind: Show},
				{Field: "connect_type.adb.device", Kind: Hide},
				{Field: "connect_type.telnet.ip", Kind: Enable},
				{Field: "connect_type.adb.device", Kind: Disable},
			},
		},
		{
			Trigger: "connect_type.type",
			When:    `connect_type.type == "adb"`,
			Effects: []Effect{
				{Field: "system.version", Kind: Show},
				{Field: "system.version", Kind: Enable},
				{Field: "system.kernel_version", Kind: Disable},
			},
		},

		// Third-party app hand-off delay.
		{
			Trigger: "connect_type.third_party.enabled",
			When:    "connect_type.third_party.enabled",
			Effects: []Effect{
				{Field: "connect_type.third_party.wait_seconds", Kind: Enable},
			},
		},

		// Serial console capture.
		{
			Trigger: "serial_port.status",
			When:    "serial_port.status",
			Effects: []Effect{
				{Field: "serial_port.port", Kind: Enable},
				{Field: "serial_port.baud", Kind: Enable},
				{Field: "serial_port.port", Kind: SetOptions, Dynamic: opts.serialPorts},
			},
		},

		// Throughput tool selection.
		{
			Trigger: "rvr.tool",
			When:    `rvr.tool == "ixchariot"`,
			Effects: []Effect{
				{Field: "rvr.ixchariot.path", Kind: Enable},
			},
		},

		// RF attenuator model drives which address fields are shown.
		{
			Trigger: "rf_solution.model",
			When:    `rf_solution.model == "RC4DAT-8G-95"`,
			Effects: []Effect{
				{Field: "rf_solution.RC4DAT-8G-95.idVendor", Kind: Show},
				{Field: "rf_solution.RC4DAT-8G-95.idProduct", Kind: Show},
				{Field: "rf_solution.RC4DAT-8G-95.ip_address", Kind: Show},
			},
		},
		{
			Trigger: "rf_solution.model",
			When:    `rf_solution.model == "RADIORACK-4-220"`,
			Effects: []Effect{
				{Field: "rf_solution.RADIORACK-4-220.ip_address", Kind: Show},
			},
		},
		{
			Trigger: "rf_solution.model",
			When:    `rf_solution.model == "LDA-908V-8"`,
			Effects: []Effect{
				{Field: "rf_solution.LDA-908V-8.ip_address", Kind: Show},
				{Field: "rf_solution.LDA-908V-8.channels", Kind: Show},
			},
		},

		// Turntable address only applies to third-party tables.
		{
			Trigger: "turntable.model",
			When:    `turntable.model == "other"`,
			Effects: []Effect{
				{Field: "turntable.ip_address", Kind: Show},
				{Field: "turntable.ip_address", Kind: Enable},
			},
		},

		// Stability check-point: ping targets follow the ping switch.
		{
			Trigger: "check_point.ping",
			When:    "check_point.ping",
			Effects: []Effect{
				{Field: "check_point.ping_targets", Kind: Enable},
			},
		},

		// Case-scoped enablement. These fire on the full pass after a case
		// selection changes (the case.* keys are derived context).
		{
			Trigger: "case.type",
			When:    "case.needs_throughput",
			Effects: []Effect{
				{Field: "rvr.tool", Kind: Enable},
				{Field: "rvr.iperf.path", Kind: Enable},
				{Field: "rvr.iperf.server_cmd", Kind: Enable},
				{Field: "rvr.iperf.client_cmd", Kind: Enable},
				{Field: "rvr.repeat", Kind: Enable},
			},
		},
		{
			Trigger: "case.type",
			When:    "case.is_performance",
			Effects: []Effect{
				{Field: "rvr.throughput_threshold", Kind: Enable},
			},
		},
		{
			Trigger: "case.type",
			When:    "case.is_rvo",
			Effects: []Effect{
				{Field: "turntable.model", Kind: Enable},
				{Field: "turntable.step", Kind: Enable},
				{Field: "turntable.static_db", Kind: Enable},
				{Field: "turntable.target_rssi", Kind: Enable},
				{Field: "corner_angle.step", Kind: Enable},
			},
		},
		{
			Trigger: "case.type",
			When:    "case.is_rvr OR case.is_rvo",
			Effects: []Effect{
				{Field: "rf_solution.model", Kind: Enable},
				{Field: "rf_solution.step", Kind: Enable},
			},
		},
		{
			Trigger: "case.type",
			When:    "case.is_stability",
			Effects: []Effect{
				{Field: "check_point.ping", Kind: Enable},
				{Field: "check_point.ping_targets", Kind: Enable},
			},
		},
		{
			Trigger: "case.type",
			When:    "case.is_compatibility",
			Effects: []Effect{
				{Field: "compatibility.nic", Kind: Enable},
				{Field: "compatibility.power_ctrl.relays", Kind: Enable},
			},
		},

		// DUT detail fields are read back from the device, never edited.
		{
			Trigger: "case.type",
			Effects: []Effect{
				{Field: "software_info.software_version", Kind: Disable},
				{Field: "software_info.driver_version", Kind: Disable},
				{Field: "hardware_info.hardware_version", Kind: Disable},
				{Field: "project.main_chip", Kind: Disable},
				{Field: "project.wifi_module", Kind: Disable},
				{Field: "project.interface", Kind: Disable},
			},
		},
	}
}

// DefaultRegistry builds the registry from DefaultSpecs. It only fails if
// the built-in declarations are inconsistent with the catalog, which the
// registry tests pin down.
func DefaultRegistry(opts Options) (*Registry, error) {
	return NewRegistry(DefaultSpecs(opts), FieldCatalog())
}
