package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/river-mounts/roam-code-sf/internal/model"
)

func TestExtractSFMetaEmitsNestedFieldAndContainerSymbols(t *testing.T) {
	source := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<CustomObject xmlns="http://soap.sforce.com/2006/04/metadata">
    <fullName>Account</fullName>
    <fields>
        <fullName>Amount__c</fullName>
        <type>Currency</type>
        <required>true</required>
        <referenceTo>Opportunity</referenceTo>
    </fields>
</CustomObject>
`)

	symbols, refs := ExtractSFMeta(source, "force-app/main/default/objects/Account/Account.object-meta.xml")

	require.Len(t, symbols, 2)
	field := symbols[0]
	assert.Equal(t, "Amount__c", field.Name)
	assert.Equal(t, model.KindField, field.Kind)
	assert.Equal(t, "fields: Amount__c (Currency) [required]", field.Signature)

	object := symbols[1]
	assert.Equal(t, "Account", object.Name)
	assert.Equal(t, model.KindClass, object.Kind)
	assert.Equal(t, "Account", object.QualifiedName)

	require.Len(t, refs, 1)
	assert.Equal(t, "Opportunity", refs[0].TargetName)
	assert.Equal(t, model.RefReference, refs[0].Kind)
}

func TestExtractSFMetaResolvesContextScopedFieldReference(t *testing.T) {
	source := []byte(`<Profile>
    <fieldPermissions>
        <field>Account.Custom_Field__c</field>
        <editable>true</editable>
    </fieldPermissions>
</Profile>
`)

	_, refs := ExtractSFMeta(source, "force-app/main/default/profiles/Admin.profile-meta.xml")

	require.Len(t, refs, 1)
	assert.Equal(t, "Custom_Field__c", refs[0].TargetName)
}

func TestExtractSFMetaExtractsFormulaFieldReferences(t *testing.T) {
	source := []byte(`<CustomField>
    <formula>Account.AnnualRevenue__c * 2</formula>
</CustomField>
`)

	_, refs := ExtractSFMeta(source, "force-app/main/default/objects/Opportunity/fields/Score__c.field-meta.xml")

	require.Len(t, refs, 1)
	assert.Equal(t, "AnnualRevenue__c", refs[0].TargetName)
}

func TestExtractSFMetaFallsBackToPathDerivedNameWhenNoFullName(t *testing.T) {
	source := []byte(`<Flow></Flow>`)

	symbols, _ := ExtractSFMeta(source, "force-app/main/default/flows/MyFlow.flow-meta.xml")

	require.Len(t, symbols, 1)
	assert.Equal(t, "MyFlow", symbols[0].Name)
	assert.Equal(t, "MyFlow", symbols[0].QualifiedName)
}

func TestDeriveNameFromPathStripsMetaSuffixAndExtension(t *testing.T) {
	assert.Equal(t, "MyFlow", deriveNameFromPath("force-app/main/default/flows/MyFlow.flow-meta.xml"))
	assert.Equal(t, "Account", deriveNameFromPath("objects/Account.object-meta.xml"))
}
