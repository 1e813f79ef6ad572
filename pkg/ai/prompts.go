package ai

type promptSet struct {
	describePlain      string
	describeStructured string
	health             string
}

// prompts is keyed by prompt version. Add a new version instead of editing
// an existing one so stored embeddings stay comparable.
var prompts = map[string]promptSet{
	"2025-06": {
		describePlain: `
You are a visual agent
that is responsible for describing the product in the images being inputted.
The description you provided will be used as text embeddings to be searched in the database.
Make sure your description is clear.

Your description should be done IN ENGLISH, EXCEPT for the product name, which should be in its native language.

Follow those aspects when describing the products:
1. The name of the product, AS IN ITS DESCRIBED NATIVE LANGUAGE, DO NOT TRANSLATE ITS NAME
2. The type of the product.
3. The manufacturer of the product, IF IN SIGHT
4. The appearance of the product, including color
5. Other important aspects that can help discriminate a product from others

Describe clear yet concisely.
Remember that your words will be served as DISCRIMINATIVE EMBEDDINGS to tell different products apart in the database
so remove unrelated information, such as background, who is holding it, etc.

If there are multiple products in the scene, describe the ones that are:
* Have the largest portion in the screen
* Being handheld, if the photo taker is holding the object
* If none above, the one with the most semantic meaning
`,
		describeStructured: `
You are a visual agent that is responsible for extracting the key information of a product in the images being inputted.

DO NOT TRANSLATE THE PRODUCT NAME AND MANUFACTURER, KEEP IT IN ITS NATIVE LANGUAGE. GIVE FULL NAME.
However, product description should be in English.
If there is no product in the image, set the "detected" field to "false" and keep other fields empty.
If the manufacturer is not in sight, set the "productManufacturer" field to "unknown".
Also, give a brief description of the product, including its appearance and other reasonable inferred aspects.
Leave out unrelated information, such as background, who is holding it, etc.

If there are multiple products in the scene, describe the ones that are:
* Have the largest portion in the screen
* Being handheld, if the photo taker is holding the object
* If none above, the one with the most semantic meaning
`,
		health: `
You are an agent that is responsible for providing health suggestions based on the product in the images being inputted.

Input: The user will provide you with an image of a product's ingredient table, and text about his/her dietary preferences/restrictions.
Output:
- If there is no product in the image, or it seems that there is no ingredient table, or if the text input is not related to dietary preferences/restrictions,
set "success" to false, opinion to "unknown", and say the reason in the "reason" field.
- Otherwise, set "success" to true and pick one of "ok", "neutral" or "avoid" as the opinion, using your health knowledge to provide the best suggestion.
Use "neutral" if you are not sure about the suggestion. Never use "unknown" in this case.
`,
	},
}

var structuredDescriptionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"detected":            map[string]any{"type": "boolean"},
		"productName":         map[string]any{"type": "string"},
		"productManufacturer": map[string]any{"type": "string"},
		"productDescription":  map[string]any{"type": "string"},
	},
	"required":             []string{"detected", "productName", "productManufacturer", "productDescription"},
	"additionalProperties": false,
}

var healthSuggestionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"success": map[string]any{"type": "boolean"},
		"opinion": map[string]any{
			"type": "string",
			"enum": []string{"ok", "neutral", "avoid", "unknown"},
		},
		"reason": map[string]any{"type": "string"},
	},
	"required":             []string{"success", "opinion", "reason"},
	"additionalProperties": false,
}
