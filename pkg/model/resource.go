// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package model

import "strings"

// ResourceType classifies every request handled by the broker.
type ResourceType string

const (
	ResourceTypeCompute      ResourceType = "COMPUTE"
	ResourceTypeNetwork      ResourceType = "NETWORK"
	ResourceTypeVolume       ResourceType = "VOLUME"
	ResourceTypeAttachment   ResourceType = "ATTACHMENT"
	ResourceTypeImage        ResourceType = "IMAGE"
	ResourceTypePublicIP     ResourceType = "PUBLIC_IP"
	ResourceTypeSecurityRule ResourceType = "SECURITY_RULE"
	ResourceTypeQuota        ResourceType = "QUOTA"
	ResourceTypeCloudName    ResourceType = "CLOUD_NAME"
	ResourceTypeInvalid      ResourceType = "INVALID_RESOURCE"
)

var resourceTypes = []ResourceType{
	ResourceTypeCompute,
	ResourceTypeNetwork,
	ResourceTypeVolume,
	ResourceTypeAttachment,
	ResourceTypeImage,
	ResourceTypePublicIP,
	ResourceTypeSecurityRule,
	ResourceTypeQuota,
	ResourceTypeCloudName,
}

func (r ResourceType) String() string {
	return string(r)
}

// ParseResourceType is case-insensitive and never fails: unknown values map to
// ResourceTypeInvalid.
func ParseResourceType(s string) ResourceType {
	for _, r := range resourceTypes {
		if strings.EqualFold(string(r), s) {
			return r
		}
	}
	return ResourceTypeInvalid
}

// Operation is used for audit classification only.
type Operation string

const (
	OperationCreate         Operation = "CREATE"
	OperationGet            Operation = "GET"
	OperationGetAll         Operation = "GET_ALL"
	OperationDelete         Operation = "DELETE"
	OperationGetUserQuota   Operation = "GET_USER_QUOTA"
	OperationGetAllImages   Operation = "GET_ALL_IMAGES"
	OperationGetImage       Operation = "GET_IMAGE"
	OperationGetCloudNames  Operation = "GET_CLOUD_NAMES"
	OperationGenericRequest Operation = "GENERIC_REQUEST"
)

func (o Operation) String() string {
	return string(o)
}
