package protocol

import "net/url"

// HTTP GPIO simulator API paths
const (
	APIPrefix  = "/api/gpio"
	HealthPath = APIPrefix + "/health"
)

// PinPath returns the value path of pin.
func PinPath(pin string) string {
	return APIPrefix + "/" + url.PathEscape(pin)
}

// ConfigurePath returns the configure path of pin.
func ConfigurePath(pin string) string {
	return PinPath(pin) + "/configure"
}

// HealthStatus is the body of the health endpoint.
type HealthStatus struct {
	Status string `json:"status"`
}

// PinValue is the body of a pin read or write.
type PinValue struct {
	Value int `json:"value"`
}

// PinSetup is the body of a configure request.
type PinSetup struct {
	Direction string `json:"direction"`
	Pull      string `json:"pull"`
}

// PinInfo describes one simulated pin in a listing.
type PinInfo struct {
	Name      string `json:"name"`
	Direction string `json:"direction"`
	Pull      string `json:"pull"`
	Value     int    `json:"value"`
}
