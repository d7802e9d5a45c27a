package scan

// DefaultUDPPayloads is the compiled-in port-set-to-payload table the CLI
// puts into every scan plan; the UDP prober reads only the plan's own
// table and does not fall back to this one. It is a static
// data table, not code: adding a protocol means adding a row, not a
// function. Entries are representative probes for protocols that reply
// to a well-formed request on their well-known port; ports with no entry
// get an empty payload, which most services ignore.
var DefaultUDPPayloads = PayloadTable{
	{Ports: portSet(53), Payload: dnsProbe()},
	{Ports: portSet(123), Payload: ntpProbe()},
	{Ports: portSet(161, 162), Payload: snmpProbe()},
	{Ports: portSet(500), Payload: ikeProbe()},
	{Ports: portSet(67, 68), Payload: dhcpProbe()},
	{Ports: portSet(69), Payload: tftpProbe()},
	{Ports: portSet(137), Payload: netbiosProbe()},
	{Ports: portSet(5353), Payload: mdnsProbe()},
}

func portSet(ports ...uint16) map[uint16]struct{} {
	set := make(map[uint16]struct{}, len(ports))
	for _, p := range ports {
		set[p] = struct{}{}
	}
	return set
}

func dnsProbe() []byte {
	return []byte{
		0x00, 0x00, // transaction ID
		0x01, 0x00, // flags: standard query
		0x00, 0x01, // questions: 1
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x07, 0x76, 0x65, 0x72, 0x73, 0x69, 0x6f, 0x6e,
		0x04, 0x62, 0x69, 0x6e, 0x64,
		0x00,
		0x00, 0x10, // TXT
		0x00, 0x03, // CH
	}
}

func ntpProbe() []byte {
	probe := make([]byte, 48)
	probe[0] = 0x1b // version 3, client mode
	return probe
}

func snmpProbe() []byte {
	return []byte{
		0x30, 0x26,
		0x02, 0x01, 0x00,
		0x04, 0x06, 0x70, 0x75, 0x62, 0x6c, 0x69, 0x63,
		0xa0, 0x19,
		0x02, 0x01, 0x00,
		0x02, 0x01, 0x00,
		0x02, 0x01, 0x00,
		0x30, 0x0e,
		0x30, 0x0c,
		0x06, 0x08, 0x2b, 0x06, 0x01, 0x02, 0x01, 0x01, 0x01, 0x00,
		0x05, 0x00,
	}
}

func ikeProbe() []byte {
	return []byte{
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x01, 0x10, 0x02, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x1c,
	}
}

func dhcpProbe() []byte {
	probe := make([]byte, 240)
	probe[0] = 0x01
	probe[1] = 0x01
	probe[2] = 0x06
	return probe
}

func tftpProbe() []byte {
	return []byte{0x00, 0x01, 0x74, 0x65, 0x73, 0x74, 0x00, 0x6f, 0x63, 0x74, 0x65, 0x74, 0x00}
}

func netbiosProbe() []byte {
	return []byte{
		0x00, 0x00,
		0x00, 0x10,
		0x00, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x20, 0x43, 0x4b, 0x41, 0x41, 0x41, 0x41, 0x41,
		0x41, 0x41, 0x41, 0x41, 0x41, 0x41, 0x41, 0x41,
		0x41, 0x41, 0x41, 0x41, 0x41, 0x41, 0x41, 0x41,
		0x41, 0x41, 0x41, 0x41, 0x41, 0x41, 0x41, 0x41,
		0x41, 0x00,
		0x00, 0x21,
		0x00, 0x01,
	}
}

func mdnsProbe() []byte {
	return []byte{
		0x00, 0x00,
		0x00, 0x00,
		0x00, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x09, 0x5f, 0x73, 0x65, 0x72, 0x76, 0x69, 0x63, 0x65, 0x73,
		0x07, 0x5f, 0x64, 0x6e, 0x73, 0x2d, 0x73, 0x64,
		0x04, 0x5f, 0x75, 0x64, 0x70,
		0x05, 0x6c, 0x6f, 0x63, 0x61, 0x6c,
		0x00,
		0x00, 0x0c,
		0x00, 0x01,
	}
}
