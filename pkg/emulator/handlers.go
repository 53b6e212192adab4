package emulator

import (
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/upvector/pkg/vector"
	"github.com/papercomputeco/upvector/pkg/vector/payload"
)

func (s *Server) handleUpsert(c *fiber.Ctx) error {
	ns, err := namespaceParam(c)
	if err != nil {
		return s.respond(c, nil, err)
	}
	items, _, err := decodeOneOrMany[payload.VectorPayload](c)
	if err != nil {
		return s.respond(c, nil, err)
	}
	return s.respond(c, "Success", s.upsert(ns, items))
}

func (s *Server) handleUpsertData(c *fiber.Ctx) error {
	ns, err := namespaceParam(c)
	if err != nil {
		return s.respond(c, nil, err)
	}
	items, _, err := decodeOneOrMany[payload.DataPayload](c)
	if err != nil {
		return s.respond(c, nil, err)
	}
	return s.respond(c, "Success", s.upsertData(c.UserContext(), ns, items))
}

func (s *Server) handleQuery(c *fiber.Ctx) error {
	return s.queryEndpoint(c, false)
}

func (s *Server) handleQueryData(c *fiber.Ctx) error {
	return s.queryEndpoint(c, true)
}

// queryEndpoint answers a single query object with a result list and an
// array of queries with a list of result lists.
func (s *Server) queryEndpoint(c *fiber.Ctx, data bool) error {
	ns, err := namespaceParam(c)
	if err != nil {
		return s.respond(c, nil, err)
	}
	queries, batch, err := decodeOneOrMany[payload.QueryPayload](c)
	if err != nil {
		return s.respond(c, nil, err)
	}

	all := make([][]vector.QueryResult, 0, len(queries))
	for _, q := range queries {
		results, err := s.query(c.UserContext(), ns, q, data)
		if err != nil {
			return s.respond(c, nil, err)
		}
		all = append(all, results)
	}

	if batch {
		return s.respond(c, all, nil)
	}
	return s.respond(c, all[0], nil)
}

func (s *Server) handleResumableQuery(c *fiber.Ctx) error {
	return s.resumableEndpoint(c, false)
}

func (s *Server) handleResumableQueryData(c *fiber.Ctx) error {
	return s.resumableEndpoint(c, true)
}

func (s *Server) resumableEndpoint(c *fiber.Ctx, data bool) error {
	ns, err := namespaceParam(c)
	if err != nil {
		return s.respond(c, nil, err)
	}
	var q payload.ResumableQueryPayload
	if err := decode(c, &q); err != nil {
		return s.respond(c, nil, err)
	}
	result, err := s.startResumable(c.UserContext(), ns, q, data)
	return s.respond(c, result, err)
}

func (s *Server) handleResumableQueryNext(c *fiber.Ctx) error {
	var p payload.ResumableNextPayload
	if err := decode(c, &p); err != nil {
		return s.respond(c, nil, err)
	}
	results, err := s.nextResumable(p)
	return s.respond(c, results, err)
}

func (s *Server) handleResumableQueryEnd(c *fiber.Ctx) error {
	var p payload.ResumableEndPayload
	if err := decode(c, &p); err != nil {
		return s.respond(c, nil, err)
	}
	status, err := s.endResumable(p)
	return s.respond(c, status, err)
}

func (s *Server) handleFetch(c *fiber.Ctx) error {
	ns, err := namespaceParam(c)
	if err != nil {
		return s.respond(c, nil, err)
	}
	var p payload.FetchPayload
	if err := decode(c, &p); err != nil {
		return s.respond(c, nil, err)
	}
	results, err := s.fetch(ns, p)
	return s.respond(c, results, err)
}

func (s *Server) handleDelete(c *fiber.Ctx) error {
	ns, err := namespaceParam(c)
	if err != nil {
		return s.respond(c, nil, err)
	}
	var p payload.DeletePayload
	if err := decode(c, &p); err != nil {
		return s.respond(c, nil, err)
	}
	result, err := s.deleteRecords(ns, p)
	return s.respond(c, result, err)
}

func (s *Server) handleRange(c *fiber.Ctx) error {
	ns, err := namespaceParam(c)
	if err != nil {
		return s.respond(c, nil, err)
	}
	var p payload.RangePayload
	if err := decode(c, &p); err != nil {
		return s.respond(c, nil, err)
	}
	result, err := s.rangeScan(ns, p)
	return s.respond(c, result, err)
}

func (s *Server) handleUpdate(c *fiber.Ctx) error {
	ns, err := namespaceParam(c)
	if err != nil {
		return s.respond(c, nil, err)
	}
	var p payload.UpdatePayload
	if err := decode(c, &p); err != nil {
		return s.respond(c, nil, err)
	}
	result, err := s.update(ns, p)
	return s.respond(c, result, err)
}

func (s *Server) handleInfo(c *fiber.Ctx) error {
	return s.respond(c, s.info(), nil)
}

func (s *Server) handleReset(c *fiber.Ctx) error {
	ns, err := namespaceParam(c)
	if err != nil {
		return s.respond(c, nil, err)
	}
	s.reset(ns, c.Context().QueryArgs().Has("all"))
	return s.respond(c, "Success", nil)
}

func (s *Server) handleListNamespaces(c *fiber.Ctx) error {
	return s.respond(c, s.listNamespaces(), nil)
}

func (s *Server) handleDeleteNamespace(c *fiber.Ctx) error {
	ns, err := namespaceParam(c)
	if err != nil {
		return s.respond(c, nil, err)
	}
	return s.respond(c, "Success", s.deleteNamespace(ns))
}
