// Package hidsvc is the host-side HID layer of turbo-keys: it enumerates
// keypad interfaces, picks the configuration interface, opens transport
// handles for the protocol core and keeps device bookkeeping in badger.
package hidsvc

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/sstallion/go-hid"
	"go.uber.org/zap"

	"github.com/BenGWeeks/turbo-keys/pkg/keypad"
)

var (
	ErrNoDevice      = errors.New("no keypad device found")
	ErrNoUsableIface = errors.New("no usable keypad interface")
)

type Service struct {
	log     *zap.Logger
	db      *badger.DB
	now     func() time.Time
	options serviceOptions
}

var defaultOptions = serviceOptions{
	vendorID:   keypad.VendorID,
	productIDs: keypad.ProductIDs,
}

type serviceOptions struct {
	vendorID   uint16
	productIDs []uint16
}

type Option func(*serviceOptions)

// WithDeviceFilter overrides which vendor/product ids count as keypads.
func WithDeviceFilter(vendorID uint16, productIDs []uint16) Option {
	return func(o *serviceOptions) {
		if vendorID != 0 {
			o.vendorID = vendorID
		}
		if len(productIDs) > 0 {
			o.productIDs = productIDs
		}
	}
}

func New(db *badger.DB, log *zap.Logger, now func() time.Time, opts ...Option) *Service {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	return &Service{
		log:     log,
		db:      db,
		now:     now,
		options: options,
	}
}

// DeviceInfo describes one HID interface of a keypad.
type DeviceInfo struct {
	Address      string    `json:"address"`
	Path         string    `json:"path"`
	VendorID     uint16    `json:"vendorId"`
	ProductID    uint16    `json:"productId"`
	Manufacturer string    `json:"manufacturer"`
	Product      string    `json:"product"`
	Interface    int       `json:"interface"`
	UsagePage    uint16    `json:"usagePage"`
	Usage        uint16    `json:"usage"`
	FirstSeenAt  time.Time `json:"firstSeenAt"`
	LastSeenAt   time.Time `json:"lastSeenAt"`
}

func address(vendorID, productID uint16, iface int) string {
	return fmt.Sprintf("%04x:%04x:%d", vendorID, productID, iface)
}

// ListDevices enumerates all matching keypad interfaces and records
// first/last seen timestamps for each.
func (s *Service) ListDevices() ([]DeviceInfo, error) {
	devices, err := s.enumerate()
	if err != nil {
		return nil, err
	}
	for i := range devices {
		if err := s.recordSeen(&devices[i]); err != nil {
			return nil, err
		}
	}
	return devices, nil
}

func (s *Service) enumerate() ([]DeviceInfo, error) {
	var devices []DeviceInfo
	for _, pid := range s.options.productIDs {
		err := hid.Enumerate(s.options.vendorID, pid, func(info *hid.DeviceInfo) error {
			devices = append(devices, DeviceInfo{
				Address:      address(info.VendorID, info.ProductID, info.InterfaceNbr),
				Path:         info.Path,
				VendorID:     info.VendorID,
				ProductID:    info.ProductID,
				Manufacturer: info.MfrStr,
				Product:      info.ProductStr,
				Interface:    info.InterfaceNbr,
				UsagePage:    info.UsagePage,
				Usage:        info.Usage,
			})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to enumerate %04x:%04x: %w", s.options.vendorID, pid, err)
		}
	}
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Path < devices[j].Path
	})
	return devices, nil
}

func (s *Service) deviceKey(addr string) []byte {
	return []byte("hid/devices/" + addr)
}

func (s *Service) recordSeen(dev *DeviceInfo) error {
	now := s.now()
	err := s.db.Update(func(txn *badger.Txn) error {
		key := s.deviceKey(dev.Address)
		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			var stored DeviceInfo
			err = item.Value(func(val []byte) error {
				return json.Unmarshal(val, &stored)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal device: %w", err)
			}
			dev.FirstSeenAt = stored.FirstSeenAt
		}
		if dev.FirstSeenAt.IsZero() {
			dev.FirstSeenAt = now
		}
		dev.LastSeenAt = now
		b, err := json.Marshal(dev)
		if err != nil {
			return fmt.Errorf("failed to marshal device: %w", err)
		}
		return txn.Set(key, b)
	})
	if err != nil {
		return fmt.Errorf("failed to record device: %w", err)
	}
	return nil
}

// selectConfigInterface picks the interface the configuration protocol is
// spoken on. The vendor software talks to interface 1 (mi_01 in Windows
// device paths); the vendor-specific page on interface 0 is the fallback.
func selectConfigInterface(devices []DeviceInfo) (DeviceInfo, bool) {
	for _, dev := range devices {
		if strings.Contains(strings.ToLower(dev.Path), "mi_01") || dev.Interface == 1 {
			return dev, true
		}
	}
	for _, dev := range devices {
		if dev.UsagePage == 0xff00 || dev.Interface == 0 {
			return dev, true
		}
	}
	if len(devices) > 0 {
		return devices[0], true
	}
	return DeviceInfo{}, false
}

// Open opens a transport handle on the keypad's configuration interface. The
// caller owns the handle; closing the returned transport closes the device.
func (s *Service) Open() (keypad.Transport, DeviceInfo, error) {
	devices, err := s.enumerate()
	if err != nil {
		return nil, DeviceInfo{}, err
	}
	if len(devices) == 0 {
		return nil, DeviceInfo{}, ErrNoDevice
	}
	info, ok := selectConfigInterface(devices)
	if !ok {
		return nil, DeviceInfo{}, ErrNoUsableIface
	}
	if err := s.recordSeen(&info); err != nil {
		return nil, DeviceInfo{}, err
	}

	dev, err := hid.OpenPath(info.Path)
	if err != nil {
		return nil, DeviceInfo{}, fmt.Errorf("failed to open %s: %w", info.Path, err)
	}
	s.log.Debug("opened keypad interface",
		zap.String("device", info.Address),
		zap.String("path", info.Path))
	return dev, info, nil
}
