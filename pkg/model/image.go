// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package model

import "fmt"

type ImageSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ImageInstance struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Size      int64  `json:"size"`
	MinDisk   int    `json:"minDisk"`
	MinRAM    int    `json:"minRam"`
	CloudName string `json:"cloudName,omitempty"`
}

func (i *ImageInstance) String() string {
	return fmt.Sprintf("Image{id=%s, name=%s, status=%s}", i.ID, i.Name, i.Status)
}

// ImageList gives the audit record of a listing a readable form.
type ImageList []ImageSummary

func (l ImageList) String() string {
	return fmt.Sprintf("%v", []ImageSummary(l))
}
