// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package skyfed

// Version is stamped by the release build.
var Version = "0.0.0"

// Agent is the name used for telemetry resources and the CLI banner.
const Agent = "skyfed"
