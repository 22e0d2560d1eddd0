package chromiumoxide

import (
	"encoding/json"
	"testing"

	"github.com/mattsse/chromiumoxide/device"
)

func TestEmulateDevice(t *testing.T) {
	p, fb := testPage(t)

	if err := p.Emulate(testContext(t), device.IPhoneX); err != nil {
		t.Fatalf("Emulate: %v", err)
	}

	var metrics struct {
		Width             int64   `json:"width"`
		Height            int64   `json:"height"`
		DeviceScaleFactor float64 `json:"deviceScaleFactor"`
		Mobile            bool    `json:"mobile"`
	}
	var touch, ua bool
	for _, c := range fb.Commands() {
		switch c.Method {
		case "Emulation.setDeviceMetricsOverride":
			if err := json.Unmarshal(c.Params, &metrics); err != nil {
				t.Fatal(err)
			}
		case "Emulation.setTouchEmulationEnabled":
			touch = true
		case "Emulation.setUserAgentOverride":
			ua = true
		}
	}
	if metrics.Width != 375 || metrics.Height != 812 || !metrics.Mobile {
		t.Fatalf("metrics = %+v", metrics)
	}
	if metrics.DeviceScaleFactor != 3 {
		t.Fatalf("scale = %v", metrics.DeviceScaleFactor)
	}
	if !touch {
		t.Error("touch emulation never set")
	}
	if !ua {
		t.Error("user agent override never set")
	}
}
