/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package phc

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// devicePath is where udev puts the PHC with the given index
func devicePath(index int32) string {
	return fmt.Sprintf("/dev/ptp%d", index)
}

// TimestampingInfo returns ETHTOOL_GET_TS_INFO of the network interface
func TimestampingInfo(iface string) (*unix.EthtoolTsInfo, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create socket for ioctl: %w", err)
	}
	defer unix.Close(fd)
	info, err := unix.IoctlGetEthtoolTsInfo(fd, iface)
	if err != nil {
		return nil, fmt.Errorf("getting %s timestamping info: %w", iface, err)
	}
	return info, nil
}

// DeviceFromIface returns a path to the PHC device of the network interface
func DeviceFromIface(iface string) (string, error) {
	if _, err := net.InterfaceByName(iface); err != nil {
		return "", fmt.Errorf("%s interface is not found", iface)
	}
	info, err := TimestampingInfo(iface)
	if err != nil {
		return "", err
	}
	if info.Phc_index < 0 {
		return "", fmt.Errorf("no PHC support for %s", iface)
	}
	return devicePath(info.Phc_index), nil
}
