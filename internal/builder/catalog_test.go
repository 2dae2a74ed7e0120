package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstantiateDefaults(t *testing.T) {
	for _, tt := range []ElementType{
		TypeHeading, TypeText, TypeButton, TypeImage, TypeForm, TypeDivider, TypeContainer,
	} {
		el, ok := Instantiate(tt)
		require.True(t, ok, "type %s", tt)
		assert.Equal(t, tt, el.Type)
		assert.NotEmpty(t, el.ID)

		want, ok := DefaultContent(tt)
		require.True(t, ok)
		assert.Equal(t, want, el.Content, "content defaults for %s", tt)
		assert.Equal(t, DefaultStyles(tt), el.Styles, "style defaults for %s", tt)
	}
}

func TestInstantiateFreshIDs(t *testing.T) {
	a, ok := Instantiate(TypeHeading)
	require.True(t, ok)
	b, ok := Instantiate(TypeHeading)
	require.True(t, ok)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestInstantiateUnknownType(t *testing.T) {
	_, ok := Instantiate(ElementType("video"))
	assert.False(t, ok)
}

func TestInstantiateContainerStartsEmpty(t *testing.T) {
	el, ok := Instantiate(TypeContainer)
	require.True(t, ok)
	cc, ok := el.Content.(ContainerContent)
	require.True(t, ok)
	assert.Empty(t, cc.Children)
	require.NotNil(t, el.ContainerStyles)
	assert.Equal(t, "flex", el.ContainerStyles.Display)
	assert.Equal(t, "row", el.ContainerStyles.FlexDirection)
	assert.Equal(t, "16px", el.ContainerStyles.Gap)
}

func TestInstantiateDoesNotShareStyleMaps(t *testing.T) {
	a, _ := Instantiate(TypeButton)
	b, _ := Instantiate(TypeButton)
	a.Styles["backgroundColor"] = "#ff0000"
	assert.NotEqual(t, a.Styles["backgroundColor"], b.Styles["backgroundColor"])
	assert.Equal(t, "#3b82f6", DefaultStyles(TypeButton)["backgroundColor"])
}
