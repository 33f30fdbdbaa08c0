package controller

import "github.com/hearthctl/homie-core/internal/homie"

// Action is the externally visible effect of handling one protocol message.
// HandleEvent returns at most one action; nil means the message was absorbed
// without an observable effect.
type Action interface {
	isAction()
}

// NewDeviceAction reports a newly discovered device. Its attribute topics
// have already been subscribed when the action is returned.
type NewDeviceAction struct {
	Device homie.DeviceRef
	Status homie.DeviceStatus
}

// StateChangedAction reports a lifecycle state transition of a known device.
type StateChangedAction struct {
	Device homie.DeviceRef
	From   homie.DeviceStatus
	To     homie.DeviceStatus
}

// DeviceDescriptionChangedAction reports an installed or replaced
// description. Property subscriptions have already been reconciled.
type DeviceDescriptionChangedAction struct {
	Device homie.DeviceRef
}

// DevicePropertyValueChangedAction reports a retained property value that
// differs from the stored one. From is nil on the first value.
type DevicePropertyValueChangedAction struct {
	Property homie.PropertyRef
	From     *homie.Value
	To       homie.Value
}

// DevicePropertyValueTriggeredAction reports a non-retained property event.
// The value is not persisted in the store.
type DevicePropertyValueTriggeredAction struct {
	Property homie.PropertyRef
	Value    homie.Value
}

// DevicePropertyTargetChangedAction reports a changed property target.
type DevicePropertyTargetChangedAction struct {
	Property homie.PropertyRef
	From     *homie.Value
	To       homie.Value
}

// DeviceAlertAction reports a newly raised device alert.
type DeviceAlertAction struct {
	Device  homie.DeviceRef
	AlertID homie.ID
	Alert   string
}

// DeviceAlertChangedAction reports a changed alert message.
type DeviceAlertChangedAction struct {
	Device  homie.DeviceRef
	AlertID homie.ID
	From    string
	To      string
}

// DeviceAlertClearedAction reports a cleared alert.
type DeviceAlertClearedAction struct {
	Device  homie.DeviceRef
	AlertID homie.ID
}

// UnhandledAction passes through a message the engine has no reaction for,
// such as broadcasts.
type UnhandledAction struct {
	Message homie.Message
}

func (NewDeviceAction) isAction()                    {}
func (StateChangedAction) isAction()                 {}
func (DeviceDescriptionChangedAction) isAction()     {}
func (DevicePropertyValueChangedAction) isAction()   {}
func (DevicePropertyValueTriggeredAction) isAction() {}
func (DevicePropertyTargetChangedAction) isAction()  {}
func (DeviceAlertAction) isAction()                  {}
func (DeviceAlertChangedAction) isAction()           {}
func (DeviceAlertClearedAction) isAction()           {}
func (UnhandledAction) isAction()                    {}
