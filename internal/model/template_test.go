package model

import "testing"

func TestFindTemplateKnown(t *testing.T) {
	tmpl, ok := FindTemplate("login")
	if !ok {
		t.Fatal("expected login template to exist")
	}
	if tmpl.Name != "login" {
		t.Errorf("got name %q", tmpl.Name)
	}
}

func TestFindTemplateUnknown(t *testing.T) {
	if _, ok := FindTemplate("does-not-exist"); ok {
		t.Error("expected unknown template to report ok=false")
	}
}

func TestInstantiateAppliesFieldsAndTags(t *testing.T) {
	tmpl, _ := FindTemplate("credit_card")
	cred, err := tmpl.Instantiate("c1", "My Visa")
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if cred.Title != "My Visa" {
		t.Errorf("got title %q", cred.Title)
	}
	if _, ok := cred.Fields["number"]; !ok {
		t.Error("expected template field 'number' to be stamped onto credential")
	}
	if !cred.Fields["cvv"].Sensitive {
		t.Error("expected cvv field to inherit sensitive=true from template")
	}
	found := false
	for _, tag := range cred.Tags {
		if tag == "finance" {
			found = true
		}
	}
	if !found {
		t.Error("expected default tag 'finance' to be applied")
	}
}

func TestInstantiateRejectsBlankTitle(t *testing.T) {
	tmpl, _ := FindTemplate("secure_note")
	if _, err := tmpl.Instantiate("c1", "   "); err == nil {
		t.Error("expected blank title to be rejected same as NewCredential")
	}
}
