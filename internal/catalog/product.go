package catalog

import "github.com/KLM-Solutions/swarm-bot/internal/domain"

const (
	ProductStrategyAgent  = "Product Strategy Agent"
	MarketResearchAgent   = "Market Research Agent"
	TechnicalAdvisorAgent = "Technical Advisor Agent"
	UXDesignAgent         = "UX Design Agent"
)

const productTriageInstruction = `You are a product management triage agent and the first point of contact. Your role is to:
1. Greet users professionally
2. Analyze queries and route them to the appropriate specialist:
   - For product strategy, roadmap, and vision → Product Strategy Agent
   - For market analysis, competitive research → Market Research Agent
   - For technical feasibility and implementation → Technical Advisor Agent
   - For user experience and design → UX Design Agent
3. If user message is unclear, ask clarifying questions
4. Always maintain a professional and solution-oriented tone

Important: You must ALWAYS determine which specialist agent should handle the query and explicitly state the transfer.`

const strategyBody = `You are a product strategy specialist.
1. Help define product vision and strategy
2. Assist with roadmap planning and prioritization
3. Provide guidance on product-market fit
4. Help with feature prioritization frameworks
5. Offer solutions for product positioning`

const marketBody = `You are a market research and analysis expert.
1. Provide market analysis frameworks
2. Help with competitive analysis
3. Guide user research methodologies
4. Assist with market sizing and opportunity assessment
5. Offer insights on market trends`

const technicalBody = `You are a technical advisor for product development.
1. Assess technical feasibility of features
2. Provide implementation guidance
3. Help with technical architecture decisions
4. Offer solutions for technical challenges
5. Guide API and integration strategies`

const uxBody = `You are a UX design specialist.
1. Provide user experience best practices
2. Guide interface design decisions
3. Help with user flow optimization
4. Offer solutions for usability challenges
5. Assist with prototyping strategies`

// Product returns the product-management registry used by the routed view.
func Product() *domain.Registry {
	return domain.NewRegistry(ProductName, TriageAgent,
		domain.AgentDefinition{
			ID:          TriageAgent,
			Instruction: productTriageInstruction,
			Color:       "#FF9999",
			Routing:     "unclear or general",
		},
		domain.AgentDefinition{
			ID:          ProductStrategyAgent,
			Instruction: strategyBody + "\n6. For technical or UX-specific queries, indicate need to transfer back to Triage Agent",
			Color:       "#99FF99",
			Routing:     "product strategy/roadmap",
		},
		domain.AgentDefinition{
			ID:          MarketResearchAgent,
			Instruction: marketBody + "\n6. For strategy or technical queries, indicate need to transfer back to Triage Agent",
			Color:       "#9999FF",
			Routing:     "market/competition",
		},
		domain.AgentDefinition{
			ID:          TechnicalAdvisorAgent,
			Instruction: technicalBody + "\n6. For strategy or UX queries, indicate need to transfer back to Triage Agent",
			Color:       "#FFFF99",
			Routing:     "technical feasibility",
		},
		domain.AgentDefinition{
			ID:          UXDesignAgent,
			Instruction: uxBody + "\n6. For technical or market research queries, indicate need to transfer back to Triage Agent",
			Color:       "#FF69B4",
			Routing:     "user experience/design",
		},
	)
}

// ProductBroadcast returns the four product specialists without triage, for
// the view that asks every agent at once.
func ProductBroadcast() *domain.Registry {
	return domain.NewRegistry(ProductBroadcastName, "",
		domain.AgentDefinition{ID: ProductStrategyAgent, Instruction: strategyBody, Color: "#99FF99", Routing: "product strategy/roadmap"},
		domain.AgentDefinition{ID: MarketResearchAgent, Instruction: marketBody, Color: "#9999FF", Routing: "market/competition"},
		domain.AgentDefinition{ID: TechnicalAdvisorAgent, Instruction: technicalBody, Color: "#FFFF99", Routing: "technical feasibility"},
		domain.AgentDefinition{ID: UXDesignAgent, Instruction: uxBody, Color: "#FF69B4", Routing: "user experience/design"},
	)
}
