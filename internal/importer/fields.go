package importer

// Field is a canonical donation column.
type Field string

const (
	FieldSlNo         Field = "slNo"
	FieldReceiptNo    Field = "receiptNo"
	FieldName         Field = "donorName"
	FieldAmount       Field = "amount"
	FieldDenomination Field = "denomination"
	FieldDate         Field = "date"
	FieldPhone        Field = "phone"
)

// Synonym is one way a column may be labelled, after header normalisation.
// Fragments match any header containing them; Exact synonyms must equal the
// whole header, for short labels like "rs" that occur inside other words.
type Synonym struct {
	Text  string
	Exact bool
}

func frag(s string) Synonym  { return Synonym{Text: s} }
func exact(s string) Synonym { return Synonym{Text: s, Exact: true} }

// Synonyms lists, per canonical field, the labels tried in order. The first
// label that resolves to a column wins. New spellings are additions here.
var Synonyms = map[Field][]Synonym{
	FieldSlNo:         {frag("slno"), frag("serialno"), frag("serial"), frag("srno"), exact("sno")},
	FieldReceiptNo:    {frag("receiptno"), frag("receiptnum"), frag("rcptno"), exact("receipt"), exact("rcpt")},
	FieldName:         {frag("name"), frag("donor"), frag("narration"), frag("particulars")},
	FieldAmount:       {frag("amount"), frag("amt"), frag("credit"), frag("rupees"), exact("rs")},
	FieldDenomination: {frag("denomination"), frag("denom"), frag("booktype"), frag("bookvalue"), exact("book")},
	FieldDate:         {frag("date"), exact("dt")},
	FieldPhone:        {frag("phone"), frag("mobile"), frag("contact"), frag("cell")},
}

// headerTokens mark a row as the header row when any normalised cell contains one.
var headerTokens = []string{"slno", "receiptno", "name"}
