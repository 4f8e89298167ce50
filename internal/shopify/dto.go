package shopify

import "encoding/json"

// Wire types for the Admin GraphQL API.

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

type userError struct {
	Field   []string `json:"field,omitempty"`
	Message string   `json:"message"`
}

type imageNode struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
}

type bundleComponentsData struct {
	Product *struct {
		ID               string `json:"id"`
		Title            string `json:"title"`
		BundleComponents struct {
			Nodes []struct {
				ComponentProduct struct {
					ID            string     `json:"id"`
					Title         string     `json:"title"`
					FeaturedImage *imageNode `json:"featuredImage"`
				} `json:"componentProduct"`
			} `json:"nodes"`
		} `json:"bundleComponents"`
	} `json:"product"`
}

type createMediaData struct {
	ProductCreateMedia struct {
		Media []struct {
			ID string `json:"id"`
		} `json:"media"`
		MediaUserErrors []userError `json:"mediaUserErrors"`
	} `json:"productCreateMedia"`
}

type mediaCountData struct {
	Product *struct {
		MediaCount struct {
			Count int `json:"count"`
		} `json:"mediaCount"`
	} `json:"product"`
}

type shopData struct {
	Shop struct {
		Name string `json:"name"`
	} `json:"shop"`
}
