package extraction

import (
	"bytes"
	"fmt"

	"code.sajari.com/docconv"
)

func docxText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("docx conversion panic: %v", r)
		}
	}()

	text, _, err = docconv.ConvertDocx(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("convert docx: %w", err)
	}
	return text, nil
}
