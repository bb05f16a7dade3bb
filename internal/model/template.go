package model

// TemplateField describes one field a Template stamps onto a new
// Credential.
type TemplateField struct {
	Name       string
	Type       FieldType
	Label      string
	Required   bool
	Sensitive  bool
	Default    string
	Validation string
}

// Template is a named, compiled-in prototype used to create credentials
// consistently. Templates are not persisted per repository.
type Template struct {
	Name        string
	Description string
	Fields      []TemplateField
	DefaultTags []string
}

// Instantiate builds a new Credential from the template, applying
// default field values and default tags. The title must still be
// supplied by the caller (templates don't imply a title).
func (t Template) Instantiate(id, title string) (*Credential, error) {
	cred, err := NewCredential(id, title, t.Name)
	if err != nil {
		return nil, err
	}
	for _, tf := range t.Fields {
		field := NewField(tf.Default, tf.Type, tf.Sensitive)
		field.Label = tf.Label
		cred.Fields[tf.Name] = field
	}
	for _, tag := range t.DefaultTags {
		cred.AddTag(tag)
	}
	return cred, nil
}

// BuiltinTemplates are the compiled-in templates every repository can
// stamp credentials from.
var BuiltinTemplates = []Template{
	{
		Name:        "login",
		Description: "Username/password credential for a website or application",
		Fields: []TemplateField{
			{Name: "username", Type: FieldUsername, Label: "Username", Required: true},
			{Name: "password", Type: FieldPassword, Label: "Password", Required: true, Sensitive: true},
			{Name: "url", Type: FieldURL, Label: "Website"},
			{Name: "totp", Type: FieldTOTPSecret, Label: "2FA Secret", Sensitive: true},
		},
		DefaultTags: []string{"login"},
	},
	{
		Name:        "credit_card",
		Description: "Payment card details",
		Fields: []TemplateField{
			{Name: "number", Type: FieldCreditCardNumber, Label: "Card Number", Required: true, Sensitive: true},
			{Name: "expiry", Type: FieldExpiryDate, Label: "Expiry", Required: true},
			{Name: "cvv", Type: FieldCVV, Label: "CVV", Required: true, Sensitive: true},
			{Name: "cardholder", Type: FieldText, Label: "Cardholder Name"},
		},
		DefaultTags: []string{"finance"},
	},
	{
		Name:        "secure_note",
		Description: "Free-form sensitive text",
		Fields: []TemplateField{
			{Name: "content", Type: FieldTextArea, Label: "Note", Sensitive: true},
		},
	},
}

// FindTemplate returns the builtin template with the given name, or ok=false.
func FindTemplate(name string) (Template, bool) {
	for _, t := range BuiltinTemplates {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}
