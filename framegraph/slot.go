package framegraph

// FrameGraphSlot is a symbolic inter-pass dependency name. A pass
// assigns a slot to a handle it produced; downstream passes resolve
// the slot back to that handle via Builder.GetSlot.
type FrameGraphSlot int

// Reserved slots. Backends and built-in passes may assume these
// names carry their documented meaning; user code is free to ignore
// any it does not need.
const (
	SlotNone FrameGraphSlot = iota
	SlotScreenColor
	SlotScreenDepth
	SlotGBufferPosition
	SlotGBufferNormal
	SlotGBufferAlbedo
	SlotShadowMapPoint
	SlotShadowMapDirectional
	SlotShadowMapSpot

	slotReservedEnd
)

// SlotUser is the first value available for caller-assigned slots,
// leaving room for the reserved range above to grow.
const SlotUser FrameGraphSlot = 1000
