// Package chunker normalizes extracted document text and splits it into
// overlapping fixed-width windows.
//
// Offsets are measured in characters (Unicode code points) of the normalized
// text. A chunker is configured once with a size and overlap:
//
//	c, err := chunker.New(1000, 200)
//	if err != nil {
//	    return err
//	}
//	for _, piece := range c.Split(doc.Text) {
//	    // ...
//	}
//
// With size 1000 and overlap 200 the window advances 800 characters at a time
// and the final window ends exactly at the end of the text.
package chunker
