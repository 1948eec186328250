package sensor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Hao-Tec/egg-guardian/internal/domain"
	"github.com/Hao-Tec/egg-guardian/internal/ports"
)

// 28- is the 1-Wire family code for the DS18B20.
const ds18b20Prefix = "28-"

// The DS18B20 reports 85000 millidegrees after a power-on reset before the
// first conversion completes; it is not a real reading.
const powerOnResetMilli = 85000

// DS18B20 reads a Dallas 1-Wire thermometer through the Linux w1 sysfs
// interface. A w1_slave read is two lines:
//
//	73 01 4b 46 7f ff 0c 10 41 : crc=41 YES
//	73 01 4b 46 7f ff 0c 10 41 t=23187
//
// The CRC verdict on the first line gates the reading; t= on the second is
// millidegrees Celsius.
type DS18B20 struct {
	dir    string
	device string
	clock  ports.Clock
}

// NewDS18B20 targets a specific device ID under dir, or discovers the first
// 28-* device when device is empty.
func NewDS18B20(dir, device string, clock ports.Clock) *DS18B20 {
	return &DS18B20{dir: dir, device: device, clock: clock}
}

func (d *DS18B20) Read(ctx context.Context) (domain.Sample, error) {
	path, err := d.devicePath()
	if err != nil {
		return domain.Sample{}, err
	}

	raw, err := os.ReadFile(filepath.Join(path, "w1_slave"))
	if err != nil {
		return domain.Sample{}, fmt.Errorf("read w1_slave: %v: %w", err, ports.ErrSensorUnavailable)
	}

	milli, err := parseW1Payload(string(raw))
	if err != nil {
		return domain.Sample{}, err
	}
	return domain.Sample{TempC: float64(milli) / 1000.0, CapturedAt: d.clock.Now()}, nil
}

func (d *DS18B20) devicePath() (string, error) {
	if d.device != "" {
		return filepath.Join(d.dir, d.device), nil
	}
	matches, err := filepath.Glob(filepath.Join(d.dir, ds18b20Prefix+"*"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("no 1-wire thermometer under %s: %w", d.dir, ports.ErrSensorUnavailable)
	}
	return matches[0], nil
}

func parseW1Payload(raw string) (int, error) {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	if len(lines) < 2 {
		return 0, fmt.Errorf("short w1 payload: %w", ports.ErrSensorUnavailable)
	}
	if !strings.HasSuffix(strings.TrimSpace(lines[0]), "YES") {
		return 0, fmt.Errorf("crc check failed: %w", ports.ErrSensorUnavailable)
	}
	idx := strings.LastIndex(lines[1], "t=")
	if idx < 0 {
		return 0, fmt.Errorf("no temperature in w1 payload: %w", ports.ErrSensorUnavailable)
	}
	milli, err := strconv.Atoi(strings.TrimSpace(lines[1][idx+2:]))
	if err != nil {
		return 0, fmt.Errorf("parse w1 temperature: %v: %w", err, ports.ErrSensorUnavailable)
	}
	if milli == powerOnResetMilli {
		return 0, fmt.Errorf("power-on reset reading: %w", ports.ErrSensorUnavailable)
	}
	return milli, nil
}

var _ ports.Sensor = (*DS18B20)(nil)
