package hidsvc

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/sstallion/go-hid"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MonitorFrame is one input report captured by the traffic monitor.
type MonitorFrame struct {
	Device string
	Data   []byte
}

const monitorBufSize = 64

// Monitor opens every matching keypad interface and streams incoming reports
// to fn until the duration elapses or ctx is cancelled. fn is called from a
// single goroutine. Interfaces that cannot be opened are skipped; at least
// one must open.
func (s *Service) Monitor(ctx context.Context, duration, readTimeout time.Duration, fn func(MonitorFrame)) error {
	devices, err := s.enumerate()
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return ErrNoDevice
	}

	ctx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	counts := xsync.NewMapOf[string, *atomic.Int64]()
	frames := make(chan MonitorFrame, 64)
	group, groupCtx := errgroup.WithContext(ctx)

	var opened int
	for _, info := range devices {
		dev, err := hid.OpenPath(info.Path)
		if err != nil {
			s.log.Debug("skipping unreadable interface",
				zap.String("device", info.Address),
				zap.Error(err))
			continue
		}
		opened++

		counter := atomic.NewInt64(0)
		counts.Store(info.Address, counter)
		s.log.Info("monitoring interface",
			zap.String("device", info.Address),
			zap.Uint16("usagePage", info.UsagePage))

		addr := info.Address
		group.Go(func() error {
			defer dev.Close()
			buf := make([]byte, monitorBufSize)
			for groupCtx.Err() == nil {
				n, err := dev.ReadWithTimeout(buf, readTimeout)
				if err != nil {
					// Device unplugged or handle invalidated.
					s.log.Debug("monitor read failed", zap.String("device", addr), zap.Error(err))
					return nil
				}
				if n == 0 {
					continue
				}
				data := make([]byte, n)
				copy(data, buf[:n])
				counter.Inc()
				select {
				case frames <- MonitorFrame{Device: addr, Data: data}:
				case <-groupCtx.Done():
					return nil
				}
			}
			return nil
		})
	}
	if opened == 0 {
		return ErrNoUsableIface
	}

	go func() {
		group.Wait()
		close(frames)
	}()
	for frame := range frames {
		fn(frame)
	}

	var total int64
	counts.Range(func(addr string, counter *atomic.Int64) bool {
		total += counter.Load()
		return true
	})
	s.log.Info("monitor finished",
		zap.Int("interfaces", opened),
		zap.Int64("frames", total))
	return nil
}
