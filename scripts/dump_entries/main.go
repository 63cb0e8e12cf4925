package main

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gnemet/pptxtract/internal/pptx"
)

// Prints every archive entry with its classification, and all Relationship
// elements of slide descriptors, internal ones included.
func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s FILE.pptx", os.Args[0])
	}
	r, err := zip.OpenReader(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	c := pptx.NewClassifier(pptx.DefaultRegistry)
	for _, f := range r.File {
		class := c.ClassifyEntry(f)
		fmt.Printf("%-60s %s\n", f.Name, class)
		if !class.Has(pptx.RelationshipDescriptor) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			fmt.Printf("  open: %v\n", err)
			continue
		}
		dumpRelationships(rc)
		rc.Close()
	}
}

func dumpRelationships(r io.Reader) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Printf("  error: %v\n", err)
			break
		}
		if el, ok := tok.(xml.StartElement); ok && el.Name.Local == "Relationship" {
			fmt.Printf("  <%s", el.Name.Local)
			for _, a := range el.Attr {
				fmt.Printf(" %s=%q", a.Name.Local, a.Value)
			}
			fmt.Printf(">\n")
		}
	}
}
