// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package capture

import (
	"github.com/google/gopacket/pcap"

	"grimm.is/glasswing/internal/errors"
)

// DefaultSnapLen captures full frames; ClientHellos regularly exceed
// small snap lengths.
const DefaultSnapLen = 65535

// OpenFile opens a pcap file for offline replay, applying the BPF
// filter when non-empty.
func OpenFile(path, bpf string) (*pcap.Handle, error) {
	handle, err := pcap.OpenOffline(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindUnavailable, "opening pcap file %s", path)
	}
	if err := applyFilter(handle, bpf); err != nil {
		handle.Close()
		return nil, err
	}
	return handle, nil
}

// OpenLive opens a live capture on iface, applying the BPF filter when
// non-empty.
func OpenLive(iface, bpf string, snaplen int32, promisc bool) (*pcap.Handle, error) {
	if snaplen <= 0 {
		snaplen = DefaultSnapLen
	}
	handle, err := pcap.OpenLive(iface, snaplen, promisc, pcap.BlockForever)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindUnavailable, "opening live capture on %s", iface)
	}
	if err := applyFilter(handle, bpf); err != nil {
		handle.Close()
		return nil, err
	}
	return handle, nil
}

func applyFilter(handle *pcap.Handle, bpf string) error {
	if bpf == "" {
		return nil
	}
	if err := handle.SetBPFFilter(bpf); err != nil {
		return errors.Wrapf(err, errors.KindValidation, "setting BPF filter %q", bpf)
	}
	return nil
}
