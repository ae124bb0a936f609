package parsing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocessSFCBlanksEverythingOutsideScriptPreservingLineCount(t *testing.T) {
	source := []byte("<template>\n  <div>{{ msg }}</div>\n</template>\n<script>\nexport default {\n  data() { return { msg: 'hi' } }\n}\n</script>\n")

	out, lang := PreprocessSFC(source)
	assert.Equal(t, LangJavaScript, lang)

	outLines := strings.Split(string(out), "\n")
	srcLines := strings.Split(string(source), "\n")
	require.Equal(t, len(srcLines), len(outLines))

	assert.Equal(t, "", outLines[0])
	assert.Equal(t, "", outLines[1])
	assert.Equal(t, "", outLines[2])
	assert.Equal(t, "", outLines[3])
	assert.Equal(t, "export default {", outLines[4])
	assert.Equal(t, "  data() { return { msg: 'hi' } }", outLines[5])
	assert.Equal(t, "}", outLines[6])
	assert.Equal(t, "", outLines[7])
}

func TestPreprocessSFCDetectsTypeScriptLangAttribute(t *testing.T) {
	source := []byte(`<script lang="ts">
const x: number = 1
</script>
`)
	_, lang := PreprocessSFC(source)
	assert.Equal(t, LangTypeScript, lang)
}

func TestPreprocessSFCDefaultsToJavaScriptWithoutLangAttribute(t *testing.T) {
	source := []byte("<script>\nconst x = 1\n</script>\n")
	_, lang := PreprocessSFC(source)
	assert.Equal(t, LangJavaScript, lang)
}

func TestExtractTemplateReturnsContentAndStartLine(t *testing.T) {
	source := []byte("<template>\n  <div>{{ msg }}</div>\n</template>\n<script>\nexport default {}\n</script>\n")

	content, startLine, ok := ExtractTemplate(source)
	require.True(t, ok)
	assert.Equal(t, 1, startLine)
	assert.Contains(t, content, "<div>{{ msg }}</div>")
}

func TestExtractTemplateCapturesOutermostBlockAcrossNestedTemplates(t *testing.T) {
	source := []byte("<template>\n" +
		"  <div>\n" +
		"    <template v-if=\"loading\">\n" +
		"      <span>loading</span>\n" +
		"    </template>\n" +
		"    <template v-for=\"item in items\" :key=\"item.id\">\n" +
		"      {{ item.name }}\n" +
		"    </template>\n" +
		"  </div>\n" +
		"</template>\n" +
		"<script>\nexport default {}\n</script>\n")

	content, startLine, ok := ExtractTemplate(source)
	require.True(t, ok)
	assert.Equal(t, 1, startLine)
	assert.Contains(t, content, "loading")
	assert.Contains(t, content, "item.name")
	assert.Contains(t, content, "</template>")
}

func TestExtractTemplateIgnoresSelfClosingTemplateTag(t *testing.T) {
	// A self-closing <template ... /> (e.g. a generated placeholder) must
	// not open a nesting level that the real closing </template> then has
	// to unwind.
	source := []byte("<template>\n" +
		"  <div>\n" +
		"    <template v-bind=\"slotProps\" />\n" +
		"    <Widget />\n" +
		"  </div>\n" +
		"</template>\n")

	content, startLine, ok := ExtractTemplate(source)
	require.True(t, ok)
	assert.Equal(t, 1, startLine)
	assert.Contains(t, content, "<Widget />")
}

func TestExtractTemplateReturnsFalseWhenAbsent(t *testing.T) {
	source := []byte("<script>\nexport default {}\n</script>\n")
	content, startLine, ok := ExtractTemplate(source)
	assert.False(t, ok)
	assert.Equal(t, "", content)
	assert.Equal(t, 0, startLine)
}
