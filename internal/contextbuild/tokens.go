package contextbuild

import "github.com/pkoukk/tiktoken-go"

// fallbackEncoding is used when the model name is not known to the
// tokenizer registry.
const fallbackEncoding = "cl100k_base"

// EstimateTokens returns the approximate token count of text for the
// given model. The estimate is advisory: context overflow is enforced by
// the transport, not here. Unknown models fall back to cl100k_base.
func EstimateTokens(text, model string) int {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return 0
		}
	}
	return len(enc.Encode(text, nil, nil))
}
