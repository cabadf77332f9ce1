package editor

// Finish reasons that mean the model declined for policy reasons.
const (
	FinishReasonSafety      = "SAFETY"
	FinishReasonImageSafety = "IMAGE_SAFETY"
)

func isSafetyBlock(reason string) bool {
	return reason == FinishReasonSafety || reason == FinishReasonImageSafety
}

// Interpret resolves a raw response into an EditResult. Image data in the
// first part of the first candidate wins over any finish reason; a safety
// finish reason wins over the generic no-image failure.
func Interpret(resp *Response) EditResult {
	if resp == nil || len(resp.Candidates) == 0 {
		return Failure{Reason: KindNoImageReturned}
	}
	first := resp.Candidates[0]

	if first.Content != nil && len(first.Content.Parts) > 0 {
		if inline := first.Content.Parts[0].InlineData; inline != nil && inline.Data != "" {
			return Success{ImageData: inline.Data, MediaType: inline.MIMEType}
		}
	}

	if isSafetyBlock(first.FinishReason) {
		return Failure{Reason: KindSafetyBlocked}
	}
	return Failure{Reason: KindNoImageReturned}
}
