package generation

import (
	"fmt"

	"github.com/nash-team/bookforge/internal/model"
)

// coverPrompt builds the cover-generation prompt from the request's title
// and theme. Kept deterministic: the same request always produces the same
// prompt, which the seed then pins to the same image.
func coverPrompt(req model.GenerationRequest) string {
	style := "bold, friendly, inviting"
	if req.Audience == model.AudienceAdults {
		style = "intricate, elegant, sophisticated"
	}
	return fmt.Sprintf(`A coloring book cover illustration titled "%s".
Theme: %s.
Style: %s line art suitable for a printed coloring book cover.
The title text "%s" appears prominently at the top.
Clean composition, high contrast outlines, no watermarks.`,
		req.Title, req.Theme, style, req.Title)
}

// templatePlan is the deterministic fallback scene plan for one content
// page, used when no prompt planner is configured. Page index is woven into
// the prompt so consecutive pages differ even without a planner.
func templatePlan(req model.GenerationRequest, pageIndex int) PagePlan {
	complexity := "simple shapes with thick outlines, large regions to color"
	if req.Audience == model.AudienceAdults {
		complexity = "detailed linework with fine patterns"
	}
	return PagePlan{
		Title: fmt.Sprintf("Page %d", pageIndex),
		Prompt: fmt.Sprintf(`Black-and-white coloring book page %d of %d.
Theme: %s.
A distinct scene for this page, different from the other pages.
%s. Pure line art on a white background, no shading, no grayscale fills.`,
			pageIndex, req.PageCount, req.Theme, complexity),
	}
}
