package shm

import "errors"

// ErrUnknownMemoryID is returned by Table.Map when no file is registered
// under the given id.
var ErrUnknownMemoryID = errors.New("shm: unknown memory id")

// ErrAlreadyTriggered is returned by ActivationRecord.Trigger callers that
// want to distinguish "not our turn" from a hard failure; Trigger itself
// returns (false, nil) for that case, this sentinel exists for callers
// building their own higher-level messaging on top.
var ErrAlreadyTriggered = errors.New("shm: activation already triggered")

// ErrRegionTooSmall is returned by NewActivationRecord when the mapped
// region is smaller than the fixed fields this package reads require.
var ErrRegionTooSmall = errors.New("shm: mapped region too small for activation record")
