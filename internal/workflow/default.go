package workflow

// Node ids of the built-in text-to-image template. Exported for tests and
// for the orchestrator's readiness probe (the checkpoint loader class).
const (
	NodeCheckpoint     = "4"
	NodeLatent         = "5"
	NodePositiveEncode = "6"
	NodeNegativeEncode = "7"
	NodeSampler        = "3"
	NodeDecode         = "8"
	NodeSave           = "9"
	NodeLora1          = "10"
	NodeLora2          = "11"
	NodeLora3          = "12"
	NodeLora4          = "13"
)

// ClassCheckpointLoader is the node class probed for loaded checkpoints.
const ClassCheckpointLoader = "CheckpointLoaderSimple"

// DefaultTemplate builds the baseline background workflow: checkpoint
// loader, a four-slot LoRA chain (each slot optional), positive and
// negative text encodes, KSampler, VAE decode, and image save.
func DefaultTemplate() *Template {
	g := Graph{
		NodeCheckpoint: {
			ClassType: ClassCheckpointLoader,
			Inputs: map[string]interface{}{
				"ckpt_name": string(PlaceholderModelName),
			},
		},
		NodeLora1: {
			ClassType: "LoraLoader",
			Inputs: map[string]interface{}{
				"lora_name":      string(PlaceholderLoraName1),
				"strength_model": string(PlaceholderLoraWeight1),
				"strength_clip":  string(PlaceholderLoraWeight1),
				"model":          Ref(NodeCheckpoint, 0),
				"clip":           Ref(NodeCheckpoint, 1),
			},
		},
		NodeLora2: {
			ClassType: "LoraLoader",
			Inputs: map[string]interface{}{
				"lora_name":      string(PlaceholderLoraName2),
				"strength_model": string(PlaceholderLoraWeight2),
				"strength_clip":  string(PlaceholderLoraWeight2),
				"model":          Ref(NodeLora1, 0),
				"clip":           Ref(NodeLora1, 1),
			},
		},
		NodeLora3: {
			ClassType: "LoraLoader",
			Inputs: map[string]interface{}{
				"lora_name":      string(PlaceholderLoraName3),
				"strength_model": string(PlaceholderLoraWeight3),
				"strength_clip":  string(PlaceholderLoraWeight3),
				"model":          Ref(NodeLora2, 0),
				"clip":           Ref(NodeLora2, 1),
			},
		},
		NodeLora4: {
			ClassType: "LoraLoader",
			Inputs: map[string]interface{}{
				"lora_name":      string(PlaceholderLoraName4),
				"strength_model": string(PlaceholderLoraWeight4),
				"strength_clip":  string(PlaceholderLoraWeight4),
				"model":          Ref(NodeLora3, 0),
				"clip":           Ref(NodeLora3, 1),
			},
		},
		NodePositiveEncode: {
			ClassType: "CLIPTextEncode",
			Inputs: map[string]interface{}{
				"text": string(PlaceholderPositivePrompt),
				"clip": Ref(NodeLora4, 1),
			},
		},
		NodeNegativeEncode: {
			ClassType: "CLIPTextEncode",
			Inputs: map[string]interface{}{
				"text": string(PlaceholderNegativePrompt),
				"clip": Ref(NodeLora4, 1),
			},
		},
		NodeLatent: {
			ClassType: "EmptyLatentImage",
			Inputs: map[string]interface{}{
				"width":      string(PlaceholderWidth),
				"height":     string(PlaceholderHeight),
				"batch_size": 1,
			},
		},
		NodeSampler: {
			ClassType: "KSampler",
			Inputs: map[string]interface{}{
				"seed":         string(PlaceholderSeed),
				"steps":        string(PlaceholderSteps),
				"cfg":          string(PlaceholderCFG),
				"sampler_name": string(PlaceholderSampler),
				"scheduler":    "normal",
				"denoise":      string(PlaceholderDenoise),
				"model":        Ref(NodeLora4, 0),
				"positive":     Ref(NodePositiveEncode, 0),
				"negative":     Ref(NodeNegativeEncode, 0),
				"latent_image": Ref(NodeLatent, 0),
			},
		},
		NodeDecode: {
			ClassType: "VAEDecode",
			Inputs: map[string]interface{}{
				"samples": Ref(NodeSampler, 0),
				"vae":     Ref(NodeCheckpoint, 2),
			},
		},
		NodeSave: {
			ClassType: "SaveImage",
			Inputs: map[string]interface{}{
				"images":          Ref(NodeDecode, 0),
				"filename_prefix": "vn_background",
			},
		},
	}

	loraPassThrough := func() map[int]string {
		return map[int]string{0: "model", 1: "clip"}
	}

	return NewTemplate(g,
		OptionalNode{NodeID: NodeLora1, Controls: PlaceholderLoraName1, PassThrough: loraPassThrough()},
		OptionalNode{NodeID: NodeLora2, Controls: PlaceholderLoraName2, PassThrough: loraPassThrough()},
		OptionalNode{NodeID: NodeLora3, Controls: PlaceholderLoraName3, PassThrough: loraPassThrough()},
		OptionalNode{NodeID: NodeLora4, Controls: PlaceholderLoraName4, PassThrough: loraPassThrough()},
	)
}
