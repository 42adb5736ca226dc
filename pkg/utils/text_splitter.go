package utils

// SplitText splits a long string into chunks of roughly chunkSize characters
// with an overlap between neighbours so context survives the boundary.
// Character based, not tokenizer aware. Chunk boundaries are deterministic:
// the same input always produces the same chunks, which keeps content hashes
// stable across re-runs.
func SplitText(text string, chunkSize int, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	runes := []rune(text)
	totalLen := len(runes)

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize
	}

	var chunks []string
	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == totalLen {
			break
		}
	}

	return chunks
}
