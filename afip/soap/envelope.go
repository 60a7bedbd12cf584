package soap

import "github.com/beevik/etree"

const envelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"

// Envelope wraps payload in a SOAP 1.1 envelope document.
func Envelope(payload *etree.Element) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	env := doc.CreateElement("soapenv:Envelope")
	env.CreateAttr("xmlns:soapenv", envelopeNS)

	body := env.CreateElement("soapenv:Body")
	body.AddChild(payload)

	return doc
}
