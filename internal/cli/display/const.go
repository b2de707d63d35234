// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package display

const (
	Tool       = "skyfed"
	BannerBlue = `
       __            ____         __
  ___ / /____ __    / __/__  ___/ /
 (_-</  '_/ // /   / _// -_)/ _  / 
/___/_/\_\\_, /   /_/  \__/ \_,_/  
         /___/                      `
	BannerGold = `
  federated clouds
  vversion
`
)
