package studio

// Flow selects which staging instruction accompanies the photo on the model
// call. The instruction text is configuration: operators tune the wording
// without code changes, so the catalog is injectable and only the flow names
// are fixed.
type Flow string

const (
	// FlowStaging furnishes an empty room as an editorial real-estate shot.
	FlowStaging Flow = "staging"
	// FlowBedroom stages an empty bedroom specifically.
	FlowBedroom Flow = "bedroom"
	// FlowCutout isolates the product onto a plain white background without
	// retouching it.
	FlowCutout Flow = "cutout"
	// FlowStudio relights the product on a seamless white studio backdrop.
	FlowStudio Flow = "studio"
)

// FlowCatalog maps flows to the instruction sent with the image.
type FlowCatalog map[Flow]string

// Instruction returns the instruction text for a flow, or ErrUnknownFlow.
func (c FlowCatalog) Instruction(flow Flow) (string, error) {
	instruction, ok := c[flow]
	if !ok || instruction == "" {
		return "", ErrUnknownFlow
	}
	return instruction, nil
}

// DefaultFlowCatalog returns the built-in instruction set.
func DefaultFlowCatalog() FlowCatalog {
	return FlowCatalog{
		FlowStaging: "Stage this empty living room with a cohesive set of modern, minimalist " +
			"furniture scaled to the room, leaving clear walkways and no odd empty space at the " +
			"edges. Add contemporary art but do not change the architecture. Preserve the existing " +
			"perspective and daylight direction and render materials with physically correct " +
			"contact shadows and fine texture for a hyper-photorealistic editorial look. Use a " +
			"warm-neutral palette with one muted accent color and avoid text, logos, clutter or " +
			"floating objects. The output dimensions must match the input photo.",
		FlowBedroom: "Stage this empty bedroom with a platform bed sized to the wall span, two " +
			"streamlined nightstands with low-profile lamps, a soft area rug extending beyond the " +
			"bed and one additional storage piece, all scaled to the room with comfortable " +
			"walkways. Preserve the existing architecture, perspective and daylight direction, " +
			"render materials with physically correct contact shadows and fine texture, keep a " +
			"warm-neutral palette with one muted accent color, and ensure the output dimensions " +
			"exactly match the input photo.",
		FlowCutout: "Identify the product in the photo and isolate it from everything around it. " +
			"Place the product on a white background, keeping its original size, color, shape and " +
			"lighting unchanged. Add a soft neutral shadow directly beneath it for realism. Do not " +
			"enhance, retouch or alter the product in any way.",
		FlowStudio: "Identify the single primary product in the photo, remove all other objects " +
			"and the original background, and place it on a pure white seamless studio backdrop. " +
			"Light it with a directional key and a subtle rim light, maintaining accurate color, " +
			"surface texture and a natural contact shadow. Compose as a straight-on eye-level " +
			"shot, preserve true proportions and label legibility, add nothing, and deliver a " +
			"hyper-photorealistic high-resolution result.",
	}
}
