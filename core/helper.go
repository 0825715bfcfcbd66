package core

// Helper wraps the bound driver and keeps the digital twin in step with
// every successful write and every physically caused active read.
type Helper struct {
	drivers DriverSource
	sync    SyncSink
}

// NewHelper returns a helper over drivers emitting to sync.
func NewHelper(drivers DriverSource, sync SyncSink) *Helper {
	if sync == nil {
		sync = DiscardSync
	}
	return &Helper{drivers: drivers, sync: sync}
}

func (h *Helper) driver(op, pin string) (GPIODriver, error) {
	if h.drivers == nil {
		return nil, Errf(DriverMissing, op, pin, nil)
	}
	d, ok := h.drivers.Driver()
	if !ok {
		return nil, Errf(DriverMissing, op, pin, nil)
	}
	return d, nil
}

// Init runs the driver's setup if it has one. With no driver bound it
// does nothing.
func (h *Helper) Init() error {
	d, err := h.driver("init", "")
	if err != nil {
		return nil
	}
	if in, ok := d.(Initializer); ok {
		return in.Init()
	}
	return nil
}

// Configure forwards cfg to the driver.
func (h *Helper) Configure(cfg PinConfig) error {
	d, err := h.driver("configure", cfg.Name)
	if err != nil {
		return err
	}
	c, ok := d.(Configurer)
	if !ok {
		return Errf(DriverMissing, "configure", cfg.Name, nil)
	}
	return c.Configure(cfg)
}

// Write drives name to value. The sync message is only sent once the
// driver reports success.
func (h *Helper) Write(name string, value bool) error {
	d, err := h.driver("write", name)
	if err != nil {
		return err
	}
	if err := d.Write(name, value); err != nil {
		return err
	}
	h.sync.Emit(SyncMessage{Kind: KindGPIO, Pin: name, Value: boolToInt(value)})
	return nil
}

// Read returns the logical level of name.
//
// For twin targets the physical sample is merged with the injected value.
// While the physical signal is asserted a sync message is sent on every
// read; there is no edge detection here.
func (h *Helper) Read(name string) (bool, error) {
	d, err := h.driver("read", name)
	if err != nil {
		return false, err
	}
	physical, err := d.Read(name)
	if err != nil {
		return false, err
	}
	twin, ok := d.(TwinTarget)
	if !ok {
		return physical, nil
	}
	simulated, pull, err := twin.Simulated(name)
	if err != nil {
		return false, err
	}
	logical, active := Reconcile(physical, simulated, pull)
	if active {
		h.sync.Emit(SyncMessage{Kind: KindGPIO, Pin: name, Value: boolToInt(ActiveLevel(pull))})
	}
	return logical, nil
}

// Inject stores a digital-twin override for name. Physical state is
// untouched.
func (h *Helper) Inject(name string, value bool) error {
	d, err := h.driver("inject", name)
	if err != nil {
		return err
	}
	twin, ok := d.(TwinTarget)
	if !ok {
		return Errf(Unsupported, "inject", name, nil)
	}
	return twin.SetSimulated(name, value)
}
