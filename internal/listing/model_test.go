package listing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushigund/Techligenc-website-backend/internal/apperror"
	"github.com/rushigund/Techligenc-website-backend/internal/listing"
)

func engineer() listing.Fields {
	return listing.Fields{
		Title:       "Engineer",
		Department:  "Eng",
		Location:    "Remote",
		Type:        "FT",
		Salary:      "100k",
		Description: "Build things in **Go**.",
		Skills:      []string{"Go", "SQL"},
	}
}

func strPtr(s string) *string { return &s }

func TestValidateAcceptsCompleteFields(t *testing.T) {
	assert.NoError(t, listing.Validate(engineer()))
}

func TestValidateReportsFieldNames(t *testing.T) {
	f := engineer()
	f.Title = ""
	f.Skills = []string{"Go", ""}

	err := listing.Validate(f)
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidationFailed, apperror.KindOf(err))

	fields := map[string]string{}
	for _, fe := range apperror.FieldsOf(err) {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "is required", fields["title"])
	assert.Contains(t, fields, "skills[1]")
}

func TestValidateRejectsEmptySkills(t *testing.T) {
	for name, skills := range map[string][]string{
		"nil":   nil,
		"empty": {},
	} {
		t.Run(name, func(t *testing.T) {
			f := engineer()
			f.Skills = skills
			assert.Equal(t, apperror.KindValidationFailed, apperror.KindOf(listing.Validate(f)))
		})
	}
}

func TestPatchApplyOnlyTouchesSuppliedFields(t *testing.T) {
	skills := []string{"Rust"}
	p := listing.Patch{Salary: strPtr("120k"), Skills: &skills}

	got := p.Apply(engineer())

	want := engineer()
	want.Salary = "120k"
	want.Skills = []string{"Rust"}
	assert.Equal(t, want, got)

	// the patch slice is copied
	skills[0] = "Zig"
	assert.Equal(t, []string{"Rust"}, got.Skills)
}

func TestPatchEmpty(t *testing.T) {
	assert.True(t, listing.Patch{}.Empty())
	assert.False(t, listing.Patch{Title: strPtr("")}.Empty())
}

func TestFieldsSanitizedStripsMarkup(t *testing.T) {
	f := engineer()
	f.Title = "  <b>Senior</b> Engineer "
	f.Skills = []string{"<i>Go</i>", "<script>x</script>"}
	f.Description = "  # Heading\n\n<b>kept</b>  "

	got := f.Sanitized()
	assert.Equal(t, "Senior Engineer", got.Title)
	assert.Equal(t, []string{"Go", ""}, got.Skills)
	assert.Equal(t, "# Heading\n\n<b>kept</b>", got.Description)

	// a skill that sanitizes to nothing still fails validation
	assert.Equal(t, apperror.KindValidationFailed, apperror.KindOf(listing.Validate(got)))
}

func TestPatchSanitizedKeepsNilMembers(t *testing.T) {
	p := listing.Patch{Location: strPtr("<p>Berlin</p>")}.Sanitized()
	require.NotNil(t, p.Location)
	assert.Equal(t, "Berlin", *p.Location)
	assert.Nil(t, p.Title)
	assert.Nil(t, p.Skills)
	assert.Nil(t, p.Description)
}
