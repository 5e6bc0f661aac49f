// Package lettergen turns a spreadsheet of property owners into personalized
// mailing letters, one PDF per owner, bundled in a single ZIP archive held in
// memory.
//
// # Quick Start
//
// Create a generator, run a batch, and close when done:
//
//	gen, err := lettergen.NewGenerator()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gen.Close()
//
//	branding := lettergen.NewBranding(logoPNG, signaturePNG)
//	res, err := gen.Generate(ctx, csvFile, branding)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("personalized_letters.zip", res.Archive, 0644)
//
// # Pipeline
//
// Each batch runs sequentially, one row at a time:
//
//  1. Record source: the owner file is parsed as CSV, header row excluded
//  2. Field extraction: owner name, street, city, state and postal code are
//     read from fixed columns (or from named headers, see ColumnMap)
//  3. Rendering: the letter template is filled and laid out on a US Letter
//     page with the logo, signature and closing lines
//  4. Archiving: the PDF is added as "{owner_name}_{postal code}.pdf"
//
// A row that cannot be extracted or rendered is skipped and reported as a
// Warning; the batch continues. Only an unreadable owner file, an archive
// write failure or a cancelled context stop a batch.
//
// # Engines
//
// EngineFPDF (default) renders in pure Go and produces identical bytes for
// identical inputs. EngineChrome prints an HTML rendition of the letter with
// headless Chrome via go-rod, which is downloaded on first use unless
// ROD_BROWSER_BIN points at an installed browser.
//
// # Letters
//
// A Letter holds a Markdown body with {{.OwnerName}}, {{.FullAddress}} and
// {{.Date}} placeholders plus closing lines. Owner values are escaped before
// substitution, so spreadsheet content never changes the formatting.
package lettergen
