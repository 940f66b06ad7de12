package constant

const (
	FlexGeneratePrompt = `You are an expert LINE Flex Message designer. Create a valid LINE Flex Message JSON (either a single Bubble or a Carousel) based on the following request: "%s".
The JSON output should strictly follow the LINE Flex Message specification. Ensure all component types and properties are valid.
Output ONLY the raw JSON object, without any surrounding text, explanations, or markdown fences.
For example, if a bubble is requested, output should start with {"type": "bubble", ...}. If a carousel, {"type": "carousel", ...}.
Use placeholder image URLs like 'https://picsum.photos/seed/example/600/400' if images are needed. Max 2 bubbles in a carousel for simplicity.
Make it visually appealing.`

	FlexImprovePrompt = `You are an expert LINE Flex Message designer. Given the following LINE Flex Message JSON:
` + "```json" + `
%s
` + "```" + `
Apply the following improvements based on this request: "%s".
Return the fully modified LINE Flex Message JSON (either a single Bubble or a Carousel).
The JSON output should strictly follow the LINE Flex Message specification. Ensure all component types and properties are valid.
Output ONLY the raw JSON object, without any surrounding text, explanations, or markdown fences.
For example, if a bubble is requested, output should start with {"type": "bubble", ...}. If a carousel, {"type": "carousel", ...}.
Make it visually appealing.`
)
