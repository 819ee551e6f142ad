package dnp3

import (
	"time"

	"avaneesh/dnp3-go/pkg/app"
	"avaneesh/dnp3-go/pkg/channel"
	"avaneesh/dnp3-go/pkg/internal/logger"
	"avaneesh/dnp3-go/pkg/master"
	"avaneesh/dnp3-go/pkg/types"
)

// newMaster creates a new master instance
func newMaster(config MasterConfig, callbacks MasterCallbacks, ch *channel.Channel, log logger.Logger) (Master, error) {
	// Convert dnp3 config to master config
	masterConfig := master.MasterConfig{
		ID:                    config.ID,
		LocalAddress:          config.LocalAddress,
		RemoteAddress:         config.RemoteAddress,
		ResponseTimeout:       config.ResponseTimeout,
		TaskRetryPeriod:       config.TaskRetryPeriod,
		TaskStartTimeout:      config.TaskStartTimeout,
		UseConfirms:           config.UseConfirms,
		NumRetry:              config.NumRetry,
		KeepAliveTimeout:      config.KeepAliveTimeout,
		LinkResponseTimeout:   config.LinkResponseTimeout,
		DisableUnsolOnStartup: config.DisableUnsolOnStartup,
		IgnoreRestartIIN:      config.IgnoreRestartIIN,
		UnsolClassMask:        config.UnsolClassMask,
		StartupIntegrityScan:  config.StartupIntegrityScan,
		IntegrityPeriod:       config.IntegrityPeriod,
		MaxRxFragSize:         config.MaxRxFragSize,
		MaxTxFragSize:         config.MaxTxFragSize,
	}

	wrappedCallbacks := &masterCallbacksWrapper{callbacks: callbacks}
	internalMaster, err := master.New(masterConfig, wrappedCallbacks, ch, log)
	if err != nil {
		return nil, err
	}

	return &masterWrapper{internal: internalMaster}, nil
}

// masterWrapper wraps internal master to implement the public Master interface.
type masterWrapper struct {
	internal interface {
		Enable() error
		Disable() error
		Shutdown() error
		AddIntegrityScan(period time.Duration) (master.ScanHandle, error)
		AddClassScan(classes app.ClassField, period time.Duration) (master.ScanHandle, error)
		AddRangeScan(objGroup, variation uint8, start, stop uint16, period time.Duration) (master.ScanHandle, error)
		ScanIntegrity() error
		ScanClasses(classes app.ClassField) error
		ScanRange(objGroup, variation uint8, start, stop uint16) error
		SelectAndOperate(commands []types.Command) ([]types.CommandStatus, error)
		DirectOperate(commands []types.Command) ([]types.CommandStatus, error)
	}
}

func (w *masterWrapper) Enable() error   { return w.internal.Enable() }
func (w *masterWrapper) Disable() error  { return w.internal.Disable() }
func (w *masterWrapper) Shutdown() error { return w.internal.Shutdown() }

func (w *masterWrapper) AddIntegrityScan(period time.Duration) (ScanHandle, error) {
	h, err := w.internal.AddIntegrityScan(period)
	if err != nil {
		return nil, err
	}
	return &scanHandleWrapper{internal: h}, nil
}

func (w *masterWrapper) AddClassScan(classes app.ClassField, period time.Duration) (ScanHandle, error) {
	h, err := w.internal.AddClassScan(classes, period)
	if err != nil {
		return nil, err
	}
	return &scanHandleWrapper{internal: h}, nil
}

func (w *masterWrapper) AddRangeScan(objGroup, variation uint8, start, stop uint16, period time.Duration) (ScanHandle, error) {
	h, err := w.internal.AddRangeScan(objGroup, variation, start, stop, period)
	if err != nil {
		return nil, err
	}
	return &scanHandleWrapper{internal: h}, nil
}

func (w *masterWrapper) ScanIntegrity() error {
	return w.internal.ScanIntegrity()
}

func (w *masterWrapper) ScanClasses(classes app.ClassField) error {
	return w.internal.ScanClasses(classes)
}

func (w *masterWrapper) ScanRange(objGroup, variation uint8, start, stop uint16) error {
	return w.internal.ScanRange(objGroup, variation, start, stop)
}

func (w *masterWrapper) SelectAndOperate(commands []types.Command) ([]types.CommandStatus, error) {
	return w.internal.SelectAndOperate(commands)
}

func (w *masterWrapper) DirectOperate(commands []types.Command) ([]types.CommandStatus, error) {
	return w.internal.DirectOperate(commands)
}

// scanHandleWrapper wraps master.ScanHandle to implement the public ScanHandle interface.
type scanHandleWrapper struct {
	internal master.ScanHandle
}

func (s *scanHandleWrapper) Demand() error { return s.internal.Demand() }
func (s *scanHandleWrapper) Remove() error { return s.internal.Remove() }

// masterCallbacksWrapper wraps dnp3.MasterCallbacks to master.MasterCallbacks.
type masterCallbacksWrapper struct {
	callbacks MasterCallbacks
}

func (w *masterCallbacksWrapper) OnBeginFragment(info master.ResponseInfo) {
	w.callbacks.OnBeginFragment(convertResponseInfo(info))
}

func (w *masterCallbacksWrapper) OnEndFragment(info master.ResponseInfo) {
	w.callbacks.OnEndFragment(convertResponseInfo(info))
}

func (w *masterCallbacksWrapper) ProcessBinary(info master.HeaderInfo, values []types.IndexedBinary) {
	w.callbacks.ProcessBinary(convertHeaderInfo(info), values)
}

func (w *masterCallbacksWrapper) ProcessDoubleBitBinary(info master.HeaderInfo, values []types.IndexedDoubleBitBinary) {
	w.callbacks.ProcessDoubleBitBinary(convertHeaderInfo(info), values)
}

func (w *masterCallbacksWrapper) ProcessAnalog(info master.HeaderInfo, values []types.IndexedAnalog) {
	w.callbacks.ProcessAnalog(convertHeaderInfo(info), values)
}

func (w *masterCallbacksWrapper) ProcessCounter(info master.HeaderInfo, values []types.IndexedCounter) {
	w.callbacks.ProcessCounter(convertHeaderInfo(info), values)
}

func (w *masterCallbacksWrapper) ProcessFrozenCounter(info master.HeaderInfo, values []types.IndexedFrozenCounter) {
	w.callbacks.ProcessFrozenCounter(convertHeaderInfo(info), values)
}

func (w *masterCallbacksWrapper) ProcessBinaryOutputStatus(info master.HeaderInfo, values []types.IndexedBinaryOutputStatus) {
	w.callbacks.ProcessBinaryOutputStatus(convertHeaderInfo(info), values)
}

func (w *masterCallbacksWrapper) ProcessAnalogOutputStatus(info master.HeaderInfo, values []types.IndexedAnalogOutputStatus) {
	w.callbacks.ProcessAnalogOutputStatus(convertHeaderInfo(info), values)
}

func (w *masterCallbacksWrapper) OnReceiveIIN(iin types.IIN) {
	w.callbacks.OnReceiveIIN(iin)
}

func (w *masterCallbacksWrapper) OnTaskStart(taskType master.TaskType, id int) {
	w.callbacks.OnTaskStart(TaskType(taskType), id)
}

func (w *masterCallbacksWrapper) OnTaskComplete(taskType master.TaskType, id int, result master.TaskResult) {
	w.callbacks.OnTaskComplete(TaskType(taskType), id, TaskResult(result))
}

func (w *masterCallbacksWrapper) GetTime() time.Time {
	return w.callbacks.GetTime()
}

func convertResponseInfo(info master.ResponseInfo) ResponseInfo {
	return ResponseInfo{Unsolicited: info.Unsolicited, FIR: info.FIR, FIN: info.FIN}
}

func convertHeaderInfo(info master.HeaderInfo) HeaderInfo {
	return HeaderInfo{Group: info.Group, Variation: info.Variation, Qualifier: info.Qualifier, IsEvent: info.IsEvent}
}
