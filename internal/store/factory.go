package store

import "loomsales.app/copilot/core/db"

type Stores struct {
	conn db.DBTX
}

func NewStores(conn db.DBTX) *Stores {
	return &Stores{conn: conn}
}

func (s *Stores) Crm() CrmStore {
	return newCrmStore(s.conn)
}

func (s *Stores) Surveys() SurveyStore {
	return newSurveyStore(s.conn)
}

func (s *Stores) Knowledge() KnowledgeStore {
	return newKnowledgeStore(s.conn)
}
