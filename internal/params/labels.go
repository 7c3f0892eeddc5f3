package params

import "strconv"

// LabelTable maps a node type name to the ordered human labels of its
// positional widget values. The node-type catalog it mirrors evolves
// independently of this viewer, so the table is injectable configuration
// with a version tag rather than a closed constant; unknown types and
// out-of-range positions fall back to placeholder labels.
type LabelTable struct {
	Version string
	Widgets map[string][]string
	// FreeText marks labels whose values render as wrapped multiline text.
	FreeText map[string]bool
	// Hidden marks labels that are UI-only controls, not parameters.
	Hidden map[string]bool
}

// DefaultLabelTable covers the common built-in node types.
func DefaultLabelTable() *LabelTable {
	return &LabelTable{
		Version: "2026-08",
		Widgets: map[string][]string{
			"KSampler":            {"seed", "control_after_generate", "steps", "cfg", "sampler_name", "scheduler", "denoise"},
			"KSamplerAdvanced":    {"add_noise", "noise_seed", "control_after_generate", "steps", "cfg", "sampler_name", "scheduler", "start_at_step", "end_at_step", "return_with_leftover_noise"},
			"CLIPTextEncode":      {"text"},
			"CheckpointLoaderSimple": {"ckpt_name"},
			"LoraLoader":          {"lora_name", "strength_model", "strength_clip"},
			"VAELoader":           {"vae_name"},
			"EmptyLatentImage":    {"width", "height", "batch_size"},
			"LatentUpscale":       {"upscale_method", "width", "height", "crop"},
			"LoadImage":           {"image", "upload"},
			"SaveImage":           {"filename_prefix"},
			"PreviewImage":        {},
			"CLIPSetLastLayer":    {"stop_at_clip_layer"},
			"ControlNetApply":     {"strength"},
			"ImageScale":          {"upscale_method", "width", "height", "crop"},
		},
		FreeText: map[string]bool{
			"text":   true,
			"prompt": true,
		},
		Hidden: map[string]bool{
			"upload": true,
		},
	}
}

// Label returns the label for a widget position on a node type, falling
// back to a positional placeholder ("w0", "w1", ...).
func (t *LabelTable) Label(nodeType string, index int) string {
	if t != nil {
		if labels, ok := t.Widgets[nodeType]; ok && index < len(labels) {
			return labels[index]
		}
	}
	return placeholderLabel(index)
}

func placeholderLabel(index int) string {
	return "w" + strconv.Itoa(index)
}

// IsFreeText reports whether values under the label render multiline.
func (t *LabelTable) IsFreeText(label string) bool {
	return t != nil && t.FreeText[label]
}

// IsHidden reports whether the label names a UI-only control to drop.
func (t *LabelTable) IsHidden(label string) bool {
	return t != nil && t.Hidden[label]
}
