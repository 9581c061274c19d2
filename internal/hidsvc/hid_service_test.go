package hidsvc

import (
	"testing"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	opts := badger.DefaultOptions(t.TempDir())
	opts.Logger = nil
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestSelectConfigInterface(t *testing.T) {
	type testCase struct {
		name    string
		devices []DeviceInfo
		want    string
		ok      bool
	}

	testCases := []testCase{
		{
			name: "prefers mi_01 path",
			devices: []DeviceInfo{
				{Path: `\\?\hid#vid_1189&pid_8890&mi_00#8`, Interface: -1},
				{Path: `\\?\hid#vid_1189&pid_8890&MI_01#9`, Interface: -1},
			},
			want: `\\?\hid#vid_1189&pid_8890&MI_01#9`,
			ok:   true,
		},
		{
			name: "prefers interface 1",
			devices: []DeviceInfo{
				{Path: "/dev/hidraw0", Interface: 0},
				{Path: "/dev/hidraw1", Interface: 1},
			},
			want: "/dev/hidraw1",
			ok:   true,
		},
		{
			name: "falls back to vendor usage page",
			devices: []DeviceInfo{
				{Path: "/dev/hidraw2", Interface: 2, UsagePage: 0x000C},
				{Path: "/dev/hidraw3", Interface: 3, UsagePage: 0xFF00},
			},
			want: "/dev/hidraw3",
			ok:   true,
		},
		{
			name: "falls back to first device",
			devices: []DeviceInfo{
				{Path: "/dev/hidraw4", Interface: 2},
				{Path: "/dev/hidraw5", Interface: 3},
			},
			want: "/dev/hidraw4",
			ok:   true,
		},
		{
			name: "no devices",
			ok:   false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dev, ok := selectConfigInterface(tc.devices)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, dev.Path)
			}
		})
	}
}

func TestRecordSeenKeepsFirstSeen(t *testing.T) {
	db := openTestDB(t)

	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	now := t0
	svc := New(db, zap.NewNop(), func() time.Time { return now })

	dev := DeviceInfo{Address: "1189:8890:1", Path: "/dev/hidraw1"}
	require.NoError(t, svc.recordSeen(&dev))
	assert.Equal(t, t0, dev.FirstSeenAt)
	assert.Equal(t, t0, dev.LastSeenAt)

	now = t0.Add(time.Hour)
	dev2 := DeviceInfo{Address: "1189:8890:1", Path: "/dev/hidraw1"}
	require.NoError(t, svc.recordSeen(&dev2))
	assert.Equal(t, t0, dev2.FirstSeenAt)
	assert.Equal(t, t0.Add(time.Hour), dev2.LastSeenAt)
}

func TestAssignmentHistory(t *testing.T) {
	db := openTestDB(t)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := New(db, zap.NewNop(), func() time.Time {
		now = now.Add(time.Second)
		return now
	})

	require.NoError(t, svc.RecordAssignment(Assignment{
		Device:  "1189:8890:1",
		Slot:    "key1",
		Mapping: "ctrl+c",
		Layer:   1,
	}))
	require.NoError(t, svc.RecordAssignment(Assignment{
		Device:  "1189:8890:1",
		Slot:    "knob1_cw",
		Mapping: "volup",
		Layer:   2,
	}))

	assignments, err := svc.ListAssignments()
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	assert.Equal(t, "key1", assignments[0].Slot)
	assert.Equal(t, "ctrl+c", assignments[0].Mapping)
	assert.False(t, assignments[0].AppliedAt.IsZero())
	assert.Equal(t, "knob1_cw", assignments[1].Slot)
	assert.True(t, assignments[0].AppliedAt.Before(assignments[1].AppliedAt))
}

func TestAddressFormat(t *testing.T) {
	assert.Equal(t, "1189:8890:1", address(0x1189, 0x8890, 1))
}
