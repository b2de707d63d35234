// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package model

import (
	"fmt"
	"net/netip"
)

type Direction string

const (
	DirectionIngress Direction = "IN"
	DirectionEgress  Direction = "OUT"
)

type EtherType string

const (
	EtherTypeIPv4 EtherType = "IPv4"
	EtherTypeIPv6 EtherType = "IPv6"
)

type Protocol string

const (
	ProtocolTCP  Protocol = "TCP"
	ProtocolUDP  Protocol = "UDP"
	ProtocolICMP Protocol = "ICMP"
	ProtocolAny  Protocol = "ANY"
)

type SecurityRule struct {
	Direction Direction `json:"direction"`
	PortFrom  int       `json:"portFrom"`
	PortTo    int       `json:"portTo"`
	CIDR      string    `json:"cidr"`
	EtherType EtherType `json:"etherType"`
	Protocol  Protocol  `json:"protocol"`
}

// Validate checks the rule is well-formed before it reaches a plugin.
func (r *SecurityRule) Validate() error {
	if r.Direction != DirectionIngress && r.Direction != DirectionEgress {
		return NewInvalidParameterError("invalid direction %q", r.Direction)
	}
	if r.PortFrom < 0 || r.PortTo > 65535 || r.PortFrom > r.PortTo {
		return NewInvalidParameterError("invalid port range %d-%d", r.PortFrom, r.PortTo)
	}
	prefix, err := netip.ParsePrefix(r.CIDR)
	if err != nil {
		return NewInvalidParameterError("invalid cidr %q", r.CIDR)
	}
	if (r.EtherType == EtherTypeIPv4) != prefix.Addr().Is4() {
		return NewInvalidParameterError("cidr %s does not match ether type %s", r.CIDR, r.EtherType)
	}
	return nil
}

func (r *SecurityRule) String() string {
	return fmt.Sprintf("%s %s %d-%d %s %s", r.Direction, r.Protocol, r.PortFrom, r.PortTo, r.CIDR, r.EtherType)
}

type SecurityRuleInstance struct {
	ID string `json:"id"`
	SecurityRule
}

type SecurityRuleList []SecurityRuleInstance

func (l SecurityRuleList) String() string {
	return fmt.Sprintf("%v", []SecurityRuleInstance(l))
}
